package report

// 面板编号, 也是看板上的展示顺序
const (
	PanelWorkingDayHourly    = "working-day-hourly"
	PanelNonWorkingDayHourly = "non-working-day-hourly"
	PanelWeather             = "weather"
	PanelCorrelation         = "correlation"
	PanelSeason              = "season"
	PanelSeasonYear          = "season-year"
)

// PanelIDs 固定的面板顺序
var PanelIDs = []string{
	PanelWorkingDayHourly,
	PanelNonWorkingDayHourly,
	PanelWeather,
	PanelCorrelation,
	PanelSeason,
	PanelSeasonYear,
}

var defaultAnnotations = map[string]Annotation{
	PanelWorkingDayHourly: {
		Style: StyleInfo,
		Text: "The bike rental pattern on working days shows two highest peaks, indicating that customers tend to rent bikes twice a day, " +
			"when commuting to work between 7 to 9 o'clock and returning home between 17 to 19 o'clock",
	},
	PanelNonWorkingDayHourly: {
		Style: StyleInfo,
		Text: "The bike rental pattern on non-working days is varies, with the average indicating a single peak at a specific hour. " +
			"On average, the increase occurs within the time range from 12 to 17 o'clock.",
	},
	PanelWeather: {
		Style: StyleText,
		Text: "Weather Categories:\n" +
			"1: Clear, Few clouds, Partly cloudy, Partly cloudy\n" +
			"2: Mist + Cloudy, Mist + Broken clouds, Mist + Few clouds, Mist\n" +
			"3: Light Snow, Light Rain + Thunderstorm + Scattered clouds, Light Rain + Scattered clouds\n" +
			"4: Heavy Rain + Ice Pallets + Thunderstorm + Mist, Snow + Fog",
	},
	PanelCorrelation: {
		Style: StyleInfo,
		Text: "The temperature has a positive correlation with total_rent. For casual users, it is positively correlated with a value of 0.57 " +
			"and registered with a value of 0.37. Therefore, it can be concluded that the higher the temperature, the more total_rent tends to increase.",
	},
	PanelSeason: {
		Style: StyleInfo,
		Text:  "The Fall season is the category with the highest average number of bicycle rentals followed by the Summer, Winter, and finally the Springer season.",
	},
	PanelSeasonYear: {
		Style: StyleInfo,
		Text:  "There was an increase in bike rentals across all four seasons from the year 2011 to 2012.",
	},
}
