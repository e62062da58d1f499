// Command predict prints a next-period estimate and today's cycle phase for
// a fixed log of period start dates.
//
// Usage:
//
//	go run ./cmd/predict
//	go run ./cmd/predict -starts 2025-09-10,2025-10-06,2025-11-01 -today 2025-11-20
//	go run ./cmd/predict -policy phases.yaml
//
// Dates are sorted and de-duplicated before prediction.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/zapponejosh/cycle-api/internal/cycle"
)

const defaultStarts = "2025-10-06,2025-11-01"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, cycle.SystemClock))
}

// run parses flags and prints the report. It returns the process exit code.
func run(args []string, stdout, stderr io.Writer, clock cycle.Clock) int {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)

	startsFlag := fs.String("starts", defaultStarts, "Comma-separated period start dates (YYYY-MM-DD)")
	todayFlag := fs.String("today", "", "Evaluation date (YYYY-MM-DD); defaults to today")
	tzFlag := fs.String("tz", "Local", "Time zone used to resolve today")
	policyFlag := fs.String("policy", "", "Optional YAML phase policy file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	loc, err := time.LoadLocation(*tzFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: unknown time zone %q: %v\n", *tzFlag, err)
		return 2
	}

	policy, err := cycle.LoadPhasePolicy(*policyFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	parsed, err := cycle.New(strings.Split(*startsFlag, ","))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	today, err := cycle.ResolveDate(*todayFlag, clock, loc)
	if err != nil {
		fmt.Fprintf(stderr, "Error: -today: %v\n", err)
		return 1
	}

	predictor := cycle.FromDates(cycle.Normalize(parsed.Starts())).WithPolicy(policy)
	printReport(stdout, predictor, today)
	return 0
}

func printReport(w io.Writer, p *cycle.Predictor, today time.Time) {
	fmt.Fprintln(w, "Cycle Predictor — Static Input Example")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logged Period Starts:")
	for _, s := range p.Starts() {
		fmt.Fprintf(w, "  %s\n", cycle.FormatDate(s))
	}

	fmt.Fprintln(w)
	switch out := p.PredictNextPeriod().(type) {
	case cycle.Prediction:
		rng := out.Range()
		fmt.Fprintln(w, "Prediction Result:")
		fmt.Fprintf(w, "  Predicted Next Period: %s\n", out.PredictedStartDate())
		fmt.Fprintf(w, "  Range: %s to %s\n", rng[0], rng[1])
		fmt.Fprintf(w, "  Confidence: %s\n", out.Confidence())
		fmt.Fprintf(w, "  Based on: %s\n", out.BasedOn())
	case cycle.InsufficientData:
		fmt.Fprintln(w, "Prediction Unavailable:")
		fmt.Fprintf(w, "  %s\n", out.Message)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Current Phase:")
	fmt.Fprintf(w, "  Today: %s\n", cycle.FormatDate(today))
	fmt.Fprintf(w, "  %s\n", p.CurrentPhase(today))
}
