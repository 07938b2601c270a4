package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ecoweather",
	Short: "Eco Weather + AQI Dashboard (Open-Meteo, no API key)",
	Long: `Eco-weather terminal dashboard: current weather, 5-day forecast,
air quality (US AQI), eco-friendly suggestions and record logging,
all backed by the free Open-Meteo APIs.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
