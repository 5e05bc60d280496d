package config

import (
	"sort"

	"github.com/san-kum/fieldviz/internal/render"
)

var Colormaps = map[string][]render.ColorStop{
	"viridis": {
		{68, 1, 84},
		{72, 34, 115},
		{64, 67, 135},
		{52, 94, 141},
		{41, 120, 142},
		{32, 144, 140},
		{34, 167, 132},
		{68, 190, 112},
		{121, 209, 81},
		{189, 222, 38},
		{253, 231, 36},
	},
	"plasma": {
		{13, 8, 135},
		{75, 3, 161},
		{125, 3, 168},
		{168, 34, 150},
		{203, 70, 121},
		{229, 107, 93},
		{248, 148, 65},
		{253, 195, 40},
		{240, 249, 33},
	},
	"coolwarm": {
		{59, 76, 192},
		{98, 130, 234},
		{141, 176, 254},
		{184, 208, 249},
		{221, 221, 221},
		{245, 196, 173},
		{244, 154, 123},
		{222, 96, 77},
		{180, 4, 38},
	},
	"blues": {
		{247, 251, 255},
		{222, 235, 247},
		{198, 219, 239},
		{158, 202, 225},
		{107, 174, 214},
		{66, 146, 198},
		{33, 113, 181},
		{8, 81, 156},
		{8, 48, 107},
	},
	"jet": {
		{0, 0, 128},
		{0, 0, 255},
		{0, 128, 255},
		{0, 255, 255},
		{128, 255, 128},
		{255, 255, 0},
		{255, 128, 0},
		{255, 0, 0},
	},
	"greys": {
		{0, 0, 0},
		{255, 255, 255},
	},
}

// DefaultVariables is the MET Nordic forecast field table.
func DefaultVariables() []VariableConfig {
	return []VariableConfig{
		{Alias: "air_pressure", Field: "air_pressure_at_sea_level"},
		{Alias: "cloud_cover", Field: "cloud_area_fraction", Colormap: "greys"},
		{Alias: "radiation", Field: "integral_of_surface_downwelling_shortwave_flux_in_air_wrt_time", Colormap: "plasma"},
		{Alias: "relative_humidity", Field: "relative_humidity_2m", Colormap: "blues"},
		{Alias: "temperature", Field: "air_temperature_2m", Colormap: "coolwarm"},
		{Alias: "wind_direction", Field: "wind_direction_10m", Colormap: "jet"},
		{Alias: "wind_gust", Field: "wind_speed_of_gust"},
		{Alias: "wind_speed", Field: "wind_speed_10m"},
	}
}

func GetColormap(name string) ([]render.ColorStop, bool) {
	stops, ok := Colormaps[name]
	return stops, ok
}

func ListColormaps() []string {
	names := make([]string, 0, len(Colormaps))
	for name := range Colormaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
