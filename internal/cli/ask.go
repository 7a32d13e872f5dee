package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"visionrag/internal/adapter/retriever"
	"visionrag/internal/router"
	"visionrag/internal/usecase"
)

var (
	askQuestion string
	askTopK     int
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question over the ingested documents",
	Long: `Route a natural-language question to a task type, retrieve the most
relevant indexed content and print the plan, the top hits and a placeholder
answer. Without -q an interactive prompt is started.

Examples:
  visionrag ask -q "ETH price trend"
  visionrag ask -q "請解釋第3頁示意圖" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "query", "q", "", "question to ask (omit for interactive mode)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of hits to retain (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	textEmb, closeCache, err := newTextEmbedder(cfg, false)
	if err != nil {
		return err
	}
	if closeCache != nil {
		defer closeCache()
	}

	topK := cfg.Retrieval.TopKText
	if askTopK > 0 {
		topK = askTopK
	}

	vectorDir := cfg.Storage.VectorDir
	hint := fmt.Sprintf("Run 'visionrag ingest --docs <dir>' to build the index under %s.", vectorDir)
	askUC := usecase.NewAskUseCase(
		router.New(cfg.Router.Rules),
		textEmb,
		func() (*retriever.Retriever, error) { return retriever.Open(vectorDir) },
		topK,
		hint,
	)

	if askQuestion != "" {
		printResponse(askUC, askQuestion)
		return nil
	}

	// Interactive mode: one question per line, EOF to leave.
	fmt.Println("visionrag interactive mode. Enter a question, Ctrl-D to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("Q> ")
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q != "" {
			printResponse(askUC, q)
		}
		fmt.Print("Q> ")
	}
	fmt.Println()
	return scanner.Err()
}

func printResponse(askUC *usecase.AskUseCase, question string) {
	resp := askUC.Ask(question)

	if askJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return
	}

	heading := color.New(color.FgCyan, color.Bold)
	scoreCol := color.New(color.FgGreen)

	heading.Println("[Plan]")
	fmt.Printf("  task: %s\n  steps: %s\n", resp.Plan.Task, strings.Join(resp.Plan.Steps, " -> "))

	heading.Println("[Top Hits]")
	if len(resp.Hits) == 0 {
		fmt.Println("  (none)")
	}
	for _, h := range resp.Hits {
		origin := h.Meta.File
		if h.Meta.Page > 0 {
			origin = fmt.Sprintf("%s (p.%d)", origin, h.Meta.Page)
		}
		fmt.Printf("  - %s %s [%s]\n", scoreCol.Sprintf("%.4f", h.Score), origin, h.Meta.Type)
	}

	heading.Println("[Answer]")
	fmt.Println(resp.Answer)
	fmt.Println(strings.Repeat("-", 40))
}
