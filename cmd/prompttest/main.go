package main

// Render the interview prompts for a transcript and optionally send them:
//   go run ./cmd/prompttest -transcript testdata/ann.yaml -prompt report -send

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"aihr-backend/internal/llm"
	"aihr-backend/internal/llm/gemini"
	"aihr-backend/internal/llm/openai"
	"aihr-backend/internal/prompts"
	"aihr-backend/internal/shared/config"
)

// transcriptFile is the on-disk transcript format.
type transcriptFile struct {
	CandidateName string   `yaml:"candidate_name"`
	Questions     []string `yaml:"questions"`
	Answers       []string `yaml:"answers"`
}

type output struct {
	Prompt   string `json:"prompt"`
	System   string `json:"system"`
	User     string `json:"user"`
	Provider string `json:"provider,omitempty"`
	Response string `json:"response,omitempty"`
}

func main() {
	cfg := config.Load()

	transcriptPath := flag.String("transcript", "", "Path to a YAML transcript (candidate_name, questions, answers)")
	promptName := flag.String("prompt", prompts.Report, "Prompt to render: next_question or report")
	send := flag.Bool("send", false, "Send the rendered prompt to the configured LLM")
	provider := flag.String("provider", cfg.LLMProvider, "LLM provider (openai or gemini)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	flag.Parse()

	if strings.TrimSpace(*transcriptPath) == "" {
		exitErr("transcript path is required")
	}
	raw, err := os.ReadFile(*transcriptPath)
	if err != nil {
		exitErr(fmt.Sprintf("read transcript: %v", err))
	}
	data, err := parseTranscript(raw)
	if err != nil {
		exitErr(err.Error())
	}

	manager, err := prompts.NewManager()
	if err != nil {
		exitErr(err.Error())
	}
	req, err := manager.Build(*promptName, data)
	if err != nil {
		exitErr(err.Error())
	}
	out := output{Prompt: *promptName, System: req.System, User: req.User}

	if *send {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		client, err := buildClient(ctx, cfg, *provider, *model)
		if err != nil {
			exitErr(err.Error())
		}
		text, err := client.Complete(ctx, req)
		if err != nil {
			exitErr(fmt.Sprintf("llm complete: %v", err))
		}
		out.Provider = client.Name()
		out.Response = text
	}

	pretty, err := prettyJSON(out)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

// parseTranscript turns the YAML file into prompt data, one entry per line.
func parseTranscript(raw []byte) (prompts.Data, error) {
	var tf transcriptFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return prompts.Data{}, fmt.Errorf("parse transcript: %w", err)
	}
	data := prompts.Data{
		CandidateName: strings.TrimSpace(tf.CandidateName),
		Questions:     strings.Join(tf.Questions, "\n"),
		Answers:       strings.Join(tf.Answers, "\n"),
	}
	if n := len(tf.Answers); n > 0 {
		data.LastAnswer = tf.Answers[n-1]
	}
	return data, nil
}

func buildClient(ctx context.Context, cfg config.Config, provider, model string) (llm.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, model, time.Duration(cfg.OpenAITimeoutSeconds)*time.Second)
	case "gemini", "google":
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func prettyJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
