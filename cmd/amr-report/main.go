package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/amrlab/amrserver/internal/ingest"
	"github.com/amrlab/amrserver/internal/surveillance"
	_ "github.com/lib/pq"
)

func main() {
	var (
		dbHost        = flag.String("db-host", "localhost", "Database host")
		dbPort        = flag.Int("db-port", 5432, "Database port")
		dbUser        = flag.String("db-user", "postgres", "Database user")
		dbPass        = flag.String("db-pass", "", "Database password")
		dbName        = flag.String("db-name", "amr", "Database name")
		csvInput      = flag.String("csv-in", "", "Read observations from a CSV file instead of the database")
		pathogen      = flag.String("pathogen", "", "Pathogen to report on (required)")
		antimicrobial = flag.String("antimicrobial", "", "Antimicrobial to report on (required)")
		region        = flag.String("region", "", "Optional region filter")
		horizon       = flag.Int("horizon", 3, "Number of periods to forecast")
		csvOutput     = flag.String("csv", "", "Optional CSV output file path for the aggregated trend")
	)
	flag.Parse()

	if *pathogen == "" || *antimicrobial == "" {
		fmt.Fprintf(os.Stderr, "Error: -pathogen and -antimicrobial are required\n")
		flag.Usage()
		os.Exit(1)
	}

	var observations []surveillance.Observation
	var err error
	if *csvInput != "" {
		observations, err = readCSVObservations(*csvInput)
	} else {
		observations, err = fetchObservations(*dbHost, *dbPort, *dbUser, *dbPass, *dbName, *pathogen, *antimicrobial)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading observations: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Antimicrobial Resistance Trend Report\n")
	fmt.Printf("=====================================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Pathogen:      %s\n", *pathogen)
	fmt.Printf("  Antimicrobial: %s\n", *antimicrobial)
	if *region != "" {
		fmt.Printf("  Region:        %s\n", *region)
	}
	fmt.Printf("  Observations:  %d\n\n", len(observations))

	history, err := surveillance.Aggregate(observations, *pathogen, *antimicrobial, *region)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Observed trend:\n")
	fmt.Printf("  %-8s %12s %12s %10s %18s\n", "Period", "Resistance%", "Std Error", "Samples", "95% CI")
	for _, stat := range history {
		fmt.Printf("  %-8d %12.2f %12.4f %10d %8.2f - %.2f\n",
			stat.Period, stat.ResistanceRate, stat.StandardError, stat.SampleSize, stat.CILower, stat.CIUpper)
	}
	fmt.Println()

	forecast, err := surveillance.Forecast(history, *horizon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Forecast unavailable: %v\n", err)
	} else {
		fmt.Printf("Forecast (%d periods):\n", *horizon)
		fmt.Printf("  %-8s %12s %18s\n", "Period", "Predicted%", "95% PI")
		for _, point := range forecast {
			fmt.Printf("  %-8d %12.2f %8.2f - %.2f\n",
				point.Period, point.PredictedResistance, point.CILower, point.CIUpper)
		}
		fmt.Println()
	}

	if *csvOutput != "" {
		if err := exportTrendCSV(*csvOutput, history, forecast); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Trend exported to %s\n", *csvOutput)
	}
}

func readCSVObservations(path string) ([]surveillance.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadObservations(f)
}

func fetchObservations(host string, port int, user, pass, name, pathogen, antimicrobial string) ([]surveillance.Observation, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	rows, err := db.Query(`
		SELECT pathogen, antimicrobial, region, period, resistance_percentage, sample_size
		FROM observations
		WHERE pathogen = $1 AND antimicrobial = $2
		ORDER BY period`, pathogen, antimicrobial)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	var observations []surveillance.Observation
	for rows.Next() {
		var o surveillance.Observation
		if err := rows.Scan(&o.Pathogen, &o.Antimicrobial, &o.Region, &o.Period, &o.ResistancePercentage, &o.SampleSize); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

func exportTrendCSV(path string, history []surveillance.PeriodStatistic, forecast []surveillance.ForecastPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "period,resistance_rate,ci_lower,ci_upper,kind"); err != nil {
		return err
	}
	for _, stat := range history {
		if _, err := fmt.Fprintf(f, "%d,%.4f,%.4f,%.4f,observed\n",
			stat.Period, stat.ResistanceRate, stat.CILower, stat.CIUpper); err != nil {
			return err
		}
	}
	for _, point := range forecast {
		if _, err := fmt.Fprintf(f, "%d,%.4f,%.4f,%.4f,%s\n",
			point.Period, point.PredictedResistance, point.CILower, point.CIUpper, point.Kind); err != nil {
			return err
		}
	}
	return nil
}
