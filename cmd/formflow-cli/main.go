package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/answers"
	"github.com/goliatone/go-formflow/pkg/loader"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/report"
)

func main() {
	action := flag.String("action", "validate", "validate | fill | report")
	source := flag.String("template", "", "template document path or URL (JSON or YAML)")
	answersPath := flag.String("answers", "", "answers JSON file (prefill for fill, required for report)")
	output := flag.String("output", "", "output file (stdout if empty)")
	format := flag.String("format", "html", "report format: html | text")
	flag.Parse()

	ctx := context.Background()

	src := parseSource(*source)
	if src == nil {
		log.Fatalf("invalid template source: %q", *source)
	}

	tpl, err := loader.New().Load(ctx, src)
	if err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}

	switch *action {
	case "validate":
		runValidate(tpl)
	case "fill":
		runFill(ctx, tpl, *answersPath, *output)
	case "report":
		runReport(ctx, tpl, *answersPath, *output, *format)
	default:
		log.Fatalf("unknown action: %q", *action)
	}
}

func runValidate(tpl formflow.Template) {
	violations := formflow.ValidateTemplate(tpl)
	if len(violations) == 0 {
		fmt.Printf("Template %s is valid (%d fields)\n", tpl.ID, len(tpl.Fields))
		return
	}
	for _, v := range violations {
		fmt.Fprintln(os.Stderr, v.Error())
	}
	os.Exit(1)
}

func runFill(ctx context.Context, tpl formflow.Template, answersPath, output string) {
	seed := loadAnswers(answersPath, false)

	collected, err := formflow.Fill(ctx, tpl, seed)
	if err != nil {
		log.Fatalf("Failed to fill form: %v", err)
	}

	payload, err := json.MarshalIndent(collected, "", "  ")
	if err != nil {
		log.Fatalf("Failed to serialize answers: %v", err)
	}
	writeOutput(output, append(payload, '\n'))
}

func runReport(ctx context.Context, tpl formflow.Template, answersPath, output, format string) {
	if answersPath == "" {
		log.Fatalf("report requires -answers")
	}
	ans := loadAnswers(answersPath, true)

	result := formflow.Evaluate(tpl, ans)

	var opts []report.Option
	switch format {
	case "html":
	case "text":
		opts = append(opts, report.WithFormat(report.FormatText))
	default:
		log.Fatalf("unknown format: %q", format)
	}

	doc, err := formflow.Report(ctx, tpl, ans, render.RenderOptions{Errors: result.Errors}, opts...)
	if err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}
	writeOutput(output, doc)
}

func loadAnswers(path string, required bool) answers.Map {
	if path == "" {
		if required {
			log.Fatalf("answers file is required")
		}
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read answers: %v", err)
	}
	var ans answers.Map
	if err := json.Unmarshal(data, &ans); err != nil {
		log.Fatalf("Failed to parse answers: %v", err)
	}
	return ans
}

func writeOutput(path string, data []byte) {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", path)
		return
	}
	fmt.Print(string(data))
}

func parseSource(raw string) loader.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return loader.SourceFromURL(path)
	}
	return loader.SourceFromFile(path)
}
