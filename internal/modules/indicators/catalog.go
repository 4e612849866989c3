package indicators

// Indicator codes from the statistical provider's taxonomy. The engine
// treats codes as opaque; this fixed catalog is what the surrounding
// system exposes to users.
const (
	CodeGDP            = "NY.GDP.MKTP.CD"
	CodeGDPPerCapita   = "NY.GDP.PCAP.CD"
	CodePopulation     = "SP.POP.TOTL"
	CodeLifeExpectancy = "SP.DYN.LE00.IN"
	CodeInternetUsers  = "IT.NET.USER.ZS"
	// CodeHumanCapital is the provider's 0-1 human capital index, used to
	// populate the hdi slot of the indicator bundle.
	CodeHumanCapital = "HD.HCI.OVRL"
)

// Supported maps every exposed indicator code to its display label.
var Supported = map[string]string{
	CodeGDP:            "GDP (current US$)",
	CodeGDPPerCapita:   "GDP per capita (current US$)",
	CodePopulation:     "Population, total",
	CodeLifeExpectancy: "Life expectancy at birth (years)",
	CodeInternetUsers:  "Individuals using the Internet (% of population)",
	CodeHumanCapital:   "Human capital index (0-1)",
}

// IsSupported reports whether code is in the exposed catalog.
func IsSupported(code string) bool {
	_, ok := Supported[code]
	return ok
}
