package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/ai"
	oai "github.com/polderlab/actornet/pkg/ai/ollama"
	gai "github.com/polderlab/actornet/pkg/ai/openai"
	"github.com/polderlab/actornet/pkg/corpus"
	"github.com/polderlab/actornet/pkg/logger"
	"github.com/polderlab/actornet/pkg/logger/console"
	"github.com/polderlab/actornet/pkg/pipeline"
	"github.com/polderlab/actornet/pkg/registry"
	"github.com/polderlab/actornet/pkg/store/base"
	storecsv "github.com/polderlab/actornet/pkg/store/csv"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

func main() {
	util.LoadEnv()

	documentsPath := flag.String("documents", "", "path to the NER-tagged documents JSON")
	organizationsPath := flag.String("organizations", "", "path to the organization registry JSON")
	surnamesPath := flag.String("surnames", "", "path to the surname reference CSV")
	outDir := flag.String("out", "out", "directory for the CSV export")
	runID := flag.String("run", "", "run identifier (generated when empty)")
	taggerModel := flag.String("tagger-model", "", "NER tagger model key to read mentions from")
	blocklist := flag.String("blocklist", "", "comma-separated organization mentions to skip")
	threshold := flag.Float64("threshold", 0.6, "similarity threshold for paragraph breaks")
	flag.Parse()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *documentsPath == "" || *organizationsPath == "" || *surnamesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	id := *runID
	if id == "" {
		var err error
		id, err = gonanoid.New()
		if err != nil {
			logger.Fatal("Failed to generate run id", "err", err)
		}
	}

	documents := loadDocuments(*documentsPath, *taggerModel)
	reg := loadRegistry(*organizationsPath)
	surnames := loadSurnames(*surnamesPath)
	scorer := newScorer()

	client := pipeline.NewClient(pipeline.NewClientParams{
		ParallelDocuments:   util.GetEnvInt("PIPELINE_PARALLEL_DOCS", 4),
		ParallelParagraphs:  util.GetEnvInt("PIPELINE_PARALLEL_PARAGRAPHS", 16),
		MaxRetries:          util.GetEnvInt("PIPELINE_MAX_RETRIES", 3),
		SimilarityThreshold: *threshold,
		TokenEncoder:        util.GetEnvString("PIPELINE_TOKEN_ENCODER", "o200k_base"),
	})

	result, err := client.Run(ctx, pipeline.RunParams{
		RunID:                 id,
		Documents:             documents,
		Registry:              reg,
		Surnames:              surnames,
		Scorer:                scorer,
		Storage:               base.NewMemoryStorage(),
		OrganizationBlocklist: splitList(*blocklist),
	})
	if err != nil {
		logger.Fatal("Pipeline run failed", "run", id, "err", err)
	}

	if err := storecsv.ExportRun(*outDir, *result); err != nil {
		logger.Fatal("CSV export failed", "dir", *outDir, "err", err)
	}

	logger.Info("Run exported",
		"run", id,
		"dir", *outDir,
		"paragraphs", len(result.Paragraphs),
		"actorEdges", len(result.ActorEdges),
		"organizationEdges", len(result.OrganizationEdges),
	)
}

func loadDocuments(path, taggerModel string) []corpus.Document {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Failed to open documents file", "path", path, "err", err)
	}
	defer f.Close()

	documents, err := corpus.LoadDocuments(f, taggerModel)
	if err != nil {
		logger.Fatal("Failed to parse documents", "path", path, "err", err)
	}
	return documents
}

func loadRegistry(path string) *registry.Registry {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Failed to open organizations file", "path", path, "err", err)
	}
	defer f.Close()

	records, err := corpus.LoadOrganizations(f)
	if err != nil {
		logger.Fatal("Failed to parse organizations", "path", path, "err", err)
	}

	reg, err := registry.Build(records)
	if err != nil {
		logger.Fatal("Failed to build registry", "path", path, "err", err)
	}
	return reg
}

func loadSurnames(path string) *registry.Surnames {
	f, err := os.Open(path)
	if err != nil {
		logger.Fatal("Failed to open surnames file", "path", path, "err", err)
	}
	defer f.Close()

	surnames, err := registry.LoadSurnames(f)
	if err != nil {
		logger.Fatal("Failed to parse surnames", "path", path, "err", err)
	}
	return surnames
}

func newScorer() ai.SimilarityScorer {
	maxConcurrent := int64(util.GetEnvInt("AI_PARALLEL_REQ", 8))

	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := oai.NewScorerOllamaClient(oai.NewScorerOllamaClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			BaseURL:        util.GetEnv("AI_EMBED_URL"),
			ApiKey:         util.GetEnv("AI_EMBED_KEY"),

			MaxConcurrentRequests: maxConcurrent,
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		return ai.NewEmbeddingScorer(client)
	default:
		client := gai.NewScorerOpenAIClient(gai.NewScorerOpenAIClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: maxConcurrent,
		})
		if util.GetEnv("SCORER_MODE") == "judge" {
			return ai.NewJudgeScorer(client)
		}
		return ai.NewEmbeddingScorer(client)
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
