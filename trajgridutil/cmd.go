/*
Copyright © 2026 the trajgrid authors.
This file is part of trajgrid.

trajgrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

trajgrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with trajgrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package trajgridutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/trajgrid"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

func init() {
	// options are the configuration options available to trajgrid.
	options := []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "AOI",
			usage: `
              AOI is the path to the GeoJSON file holding the area-of-interest
              polygon in geographic (longitude/latitude) coordinates. It may be
              a bare geometry, a Feature, or a FeatureCollection whose polygons
              are merged by union. The path can include environment variables.`,
			defaultVal: "aoi.geojson",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "CellSize",
			usage: `
              CellSize is the edge length of a square grid cell in the linear
              units of the projected coordinate system (meters for UTM).`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "GridMetric",
			usage: `
              GridMetric is the path where the grid is written as a GeoJSON
              FeatureCollection in the planar (UTM) coordinate system, and
              where other commands read it from. It can include environment
              variables.`,
			defaultVal: "grid_metric.geojson",
			flagsets: []*pflag.FlagSet{gridCmd.Flags(), foldersCmd.Flags(),
				bucketizeCmd.Flags(), flattenCmd.Flags()},
		},
		{
			name: "GridWGS84",
			usage: `
              GridWGS84 is the path where the grid is additionally written
              with geometries in geographic coordinates. If empty, no
              geographic output is written.`,
			defaultVal: "grid_wgs84.geojson",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "GridShapefile",
			usage: `
              GridShapefile is the path where the grid is additionally written
              as a shapefile with a companion .prj file. If empty, no
              shapefile is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "OutputRoot",
			usage: `
              OutputRoot is the root directory holding the per-cell folders
              (cell_<id>). It can include environment variables.`,
			defaultVal: "grid_cells",
			flagsets: []*pflag.FlagSet{foldersCmd.Flags(), bucketizeCmd.Flags(),
				scanCmd.Flags()},
		},
		{
			name: "GridIDField",
			usage: `
              GridIDField is the name of the feature property holding the cell
              identifier in the grid file.`,
			defaultVal: "cell_id",
			flagsets: []*pflag.FlagSet{foldersCmd.Flags(), bucketizeCmd.Flags(),
				flattenCmd.Flags()},
		},
		{
			name: "Trajectories",
			usage: `
              Trajectories is the path to the CSV file holding agent trajectory
              points with agent, time, latitude and longitude columns. The
              path can include environment variables.`,
			defaultVal: "trajectories.csv",
			flagsets:   []*pflag.FlagSet{bucketizeCmd.Flags()},
		},
		{
			name: "BucketID",
			usage: `
              BucketID is the bucket identifier attached to the rows of one
              ingestion pass, keeping separate passes apart within the same
              cell folder.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{bucketizeCmd.Flags(), scanCmd.Flags()},
		},
		{
			name: "AgentField",
			usage: `
              AgentField is the agent identifier column name in the trajectory
              file.`,
			defaultVal: "agent",
			flagsets:   []*pflag.FlagSet{bucketizeCmd.Flags()},
		},
		{
			name: "LatitudeField",
			usage: `
              LatitudeField is the latitude column name in the trajectory file.`,
			defaultVal: "latitude",
			flagsets:   []*pflag.FlagSet{bucketizeCmd.Flags()},
		},
		{
			name: "LongitudeField",
			usage: `
              LongitudeField is the longitude column name in the trajectory
              file.`,
			defaultVal: "longitude",
			flagsets:   []*pflag.FlagSet{bucketizeCmd.Flags()},
		},
		{
			name: "TimeField",
			usage: `
              TimeField is the time column name in the trajectory file. If
              empty, the column is discovered from common variants (timestamp,
              time, datetime, date_time, ts).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{bucketizeCmd.Flags()},
		},
		{
			name: "SummaryFile",
			usage: `
              SummaryFile is the path where the scan command writes its
              single-column summary CSV of cell identifiers that have a visit
              file. If empty, no summary is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{scanCmd.Flags()},
		},
		{
			name: "FlattenFile",
			usage: `
              FlattenFile is the path where the flatten command writes the
              grid as a CSV file with centroid coordinates.`,
			defaultVal: "grid_metric.csv",
			flagsets:   []*pflag.FlagSet{flattenCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TRAJGRID")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(foldersCmd)
	Root.AddCommand(bucketizeCmd)
	Root.AddCommand(scanCmd)
	Root.AddCommand(flattenCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("trajgrid: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "trajgrid",
	Short: "A trajectory-to-grid partitioning toolkit.",
	Long: `trajgrid builds a grid of cells over an area of interest and
partitions agent trajectory records into per-cell buckets.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format
'TRAJGRID_var' where 'var' is the name of the variable to be set. Many
configuration variables are additionally allowed to contain environment
variables within them.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of trajgrid.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trajgrid v%s\n", trajgrid.Version)
	},
	DisableAutoGenTag: true,
}

// gridCmd is a command that builds the grid over the area of interest.
var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Build the grid over the area of interest",
	Long: `grid selects a UTM coordinate system from the AOI centroid, projects
the AOI into it, covers the projected bounding box with square cells of
edge length CellSize, clips each cell to the AOI boundary, and writes the
result as GeoJSON (and optionally as a shapefile).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cellSize, err := cellSizeConfig(Cfg)
		if err != nil {
			return err
		}
		return Grid(
			os.ExpandEnv(Cfg.GetString("AOI")),
			cellSize,
			Cfg.GetString("GridMetric"),
			Cfg.GetString("GridWGS84"),
			Cfg.GetString("GridShapefile"),
		)
	},
	DisableAutoGenTag: true,
}

// foldersCmd is a command that creates one folder per grid cell.
var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Create one folder per grid cell",
	Long: `folders reads the grid file and creates one directory per cell under
OutputRoot, writing each cell's single-feature GeoJSON into it. Directory
creation is idempotent so the command can be rerun safely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Folders(
			Cfg.GetString("GridMetric"),
			Cfg.GetString("OutputRoot"),
			Cfg.GetString("GridIDField"),
		)
	},
	DisableAutoGenTag: true,
}

// bucketizeCmd is a command that assigns trajectory points to cells.
var bucketizeCmd = &cobra.Command{
	Use:   "bucketize",
	Short: "Assign trajectory points to grid cells",
	Long: `bucketize reads agent trajectory points from the Trajectories CSV
file, assigns each point to the grid cell whose clipped polygon contains
it, and appends the points to per-cell visit files
(cell_<id>/visits_bucket<BucketID>.csv) under OutputRoot. Points outside
every cell are dropped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucketID, err := cast.ToIntE(Cfg.Get("BucketID"))
		if err != nil {
			return fmt.Errorf("trajgrid: reading 'BucketID': %v", err)
		}
		return Bucketize(
			Cfg.GetString("GridMetric"),
			os.ExpandEnv(Cfg.GetString("Trajectories")),
			Cfg.GetString("OutputRoot"),
			Cfg.GetString("GridIDField"),
			trajectoryColumns(Cfg),
			bucketID,
		)
	},
	DisableAutoGenTag: true,
}

// scanCmd is a command that reports which cells have a visit file.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report which cell folders contain a visit file",
	Long: `scan walks the cell folders under OutputRoot and reports which of
them contain visits_bucket<BucketID>.csv and which do not, optionally
writing the found cell identifiers to SummaryFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucketID, err := cast.ToIntE(Cfg.Get("BucketID"))
		if err != nil {
			return fmt.Errorf("trajgrid: reading 'BucketID': %v", err)
		}
		return Scan(
			Cfg.GetString("OutputRoot"),
			bucketID,
			Cfg.GetString("SummaryFile"),
		)
	},
	DisableAutoGenTag: true,
}

// flattenCmd is a command that writes the grid as a CSV file.
var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Write the grid as a CSV file with centroids",
	Long: `flatten reads the grid file and writes one CSV row per cell with the
cell attributes and the centroid in both planar and geographic
coordinates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Flatten(
			Cfg.GetString("GridMetric"),
			Cfg.GetString("FlattenFile"),
			Cfg.GetString("GridIDField"),
		)
	},
	DisableAutoGenTag: true,
}
