package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"healthcare-agent/internal/config"
)

const configFilePath = "./configs/config.yaml"

// modelprep manages the local embedding model on the ollama server so the
// service can run fully offline: -pull downloads the configured model,
// -prune deletes every other model to keep the footprint small.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	pull := flag.Bool("pull", false, "Pull the configured embedding model")
	prune := flag.Bool("prune", false, "Delete all local models except the configured one")
	flag.Parse()

	if !*pull && !*prune {
		log.Fatal().Msg("Nothing to do, pass -pull and/or -prune")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	baseURL := strings.TrimSuffix(cfg.EmbedLLM.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.EmbedLLM.Model

	client := &http.Client{Timeout: 10 * time.Minute}

	if *pull {
		log.Info().Str("model", model).Msg("Pulling embedding model")
		if err := pullModel(client, baseURL, model); err != nil {
			log.Fatal().Err(err).Msg("Error pulling model")
		}
		log.Info().Msg("Model pulled")
	}

	if *prune {
		names, err := listModels(client, baseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Error listing models")
		}
		for _, name := range names {
			if name == model || strings.HasPrefix(name, model+":") {
				continue
			}
			log.Info().Str("model", name).Msg("Deleting unused model")
			if err := deleteModel(client, baseURL, name); err != nil {
				log.Error().Err(err).Str("model", name).Msg("Error deleting model")
			}
		}
		log.Info().Msg("Prune complete")
	}

	if err := verifyModel(client, baseURL, model); err != nil {
		log.Fatal().Err(err).Msg("Model not available after prep")
	}
	log.Info().Str("model", model).Msg("Model ready for offline use")
}

func pullModel(client *http.Client, baseURL, model string) error {
	body, _ := json.Marshal(map[string]any{"name": model, "stream": false})
	resp, err := client.Post(baseURL+"/api/pull", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pull failed: %d, %s", resp.StatusCode, string(data))
	}
	return nil
}

func listModels(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/api/tags")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list failed: %d, %s", resp.StatusCode, string(data))
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func deleteModel(client *http.Client, baseURL, model string) error {
	body, _ := json.Marshal(map[string]any{"name": model})
	req, err := http.NewRequest(http.MethodDelete, baseURL+"/api/delete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete failed: %d, %s", resp.StatusCode, string(data))
	}
	return nil
}

func verifyModel(client *http.Client, baseURL, model string) error {
	names, err := listModels(client, baseURL)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == model || strings.HasPrefix(name, model+":") {
			return nil
		}
	}
	return fmt.Errorf("model %s not found on server", model)
}
