// Command lint-api checks an OpenAPI 3.x spec for posgate convention violations.
//
// Usage:
//
//	go run ./cmd/lint-api [flags] [openapi.yaml]
//
// The spec path defaults to internal/api/openapi.yaml.
//
// Flags:
//
//	-severity    Minimum severity to report: error, warning, info (default: all)
//	-config      Path to an .apilint.yaml with per-rule severity overrides
//	-list-rules  Print the rule catalog and exit
//	-vacuum      Run the vacuum custom functions instead of the native engine
package main

import (
	"flag"
	"fmt"
	"os"

	"posgate/pkg/apilint"
)

func main() {
	severity := flag.String("severity", "", "minimum severity to report: error, warning, info (default: all)")
	configPath := flag.String("config", "", "path to .apilint.yaml with per-rule severity overrides")
	listRules := flag.Bool("list-rules", false, "print the rule catalog and exit")
	vacuum := flag.Bool("vacuum", false, "run the vacuum custom functions instead of the native engine")
	flag.Parse()

	if *listRules {
		for _, r := range apilint.RegisteredRules() {
			fmt.Printf("%s  %-7s  %s\n", r.ID(), r.DefaultSeverity(), r.Description())
		}
		return
	}

	path := "internal/api/openapi.yaml"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	var violations []apilint.Violation
	if *vacuum {
		var err error
		violations, err = apilint.RunVacuum(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
	} else {
		linter, err := apilint.New(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		var cfg *apilint.Config
		if *configPath != "" {
			cfg, err = apilint.LoadConfig(*configPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(2)
			}
		}
		violations = linter.RunWithConfig(cfg)
	}

	if *severity != "" {
		sev := apilint.Severity(*severity)
		if sev != apilint.SeverityError && sev != apilint.SeverityWarning && sev != apilint.SeverityInfo {
			fmt.Fprintf(os.Stderr, "error: unknown severity %q (use: error, warning, info)\n", *severity)
			os.Exit(2)
		}
		violations = apilint.Filter(violations, sev)
	}

	for _, v := range violations {
		fmt.Println(v)
	}
	if n := len(violations); n == 0 {
		fmt.Printf("%s: clean\n", path)
	} else {
		fmt.Printf("\n%d violation(s)\n", n)
	}

	if apilint.HasErrors(violations) {
		os.Exit(1)
	}
}
