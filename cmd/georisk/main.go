// Command georisk builds the daily geopolitical risk report.
//
// Usage:
//
//	georisk                 Show help
//	georisk run             One pipeline run, prints the report JSON
//	georisk serve           HTTP trigger and report API
//	georisk status          Last run status
//	georisk show            Render the latest (or a dated) report
//	georisk history         List archived report dates
package main

import (
	"fmt"
	"os"
)

const usage = `georisk - daily geopolitical risk report

Usage:
  georisk <command> [flags]

Commands:
  run         Fetch, filter, rank and synthesize today's report (once per day)
  serve       Serve POST /run, /status, /report and /metrics over HTTP
  status      Show the last run status
  show        Render the latest report, or -date YYYY-MM-DD
  history     List archived report dates

Common flags:
  -config     YAML config file (defaults built in)
  -env        .env file to load before reading the environment (default .env)

Environment:
  ANTHROPIC_API_KEY   Claude provider
  OPENAI_API_KEY      OpenAI provider
  XAI_API_KEY         Grok provider
  GEMINI_API_KEY      Gemini provider
  GOOGLE_CSE_KEY      Web search channel key
  GOOGLE_CSE_ID       Web search engine id
  ALPHAVANTAGE_API_KEY Market news channel
  GEORISK_STORE       Report Store driver (file, sqlite, postgres, redis, memory)
  GEORISK_DSN         Report Store location

Run 'georisk <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "run":
		runOnce()
	case "serve":
		runServe()
	case "status":
		runStatus()
	case "show":
		runShow()
	case "history":
		runHistory()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "georisk: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
