package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/config"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/pipeline"
	"github.com/MaaAssistantArknights/issue-checker/internal/integrations/github"
	"github.com/MaaAssistantArknights/issue-checker/internal/steps"
)

var (
	configPath   string
	repoToken    string
	notBefore    string
	includeTitle string
	syncLabels   string
	workflow     string
	dryRun       bool
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the checker for the triggering event",
	Long: `Run the checker once for the event described by the GitHub Actions
environment (GITHUB_EVENT_NAME, GITHUB_EVENT_PATH, GITHUB_REPOSITORY).
Flags fall back to the corresponding INPUT_* action input variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&configPath, "configuration-path", "", "Path of the rule configuration file in the repository")
	runCmd.Flags().StringVar(&repoToken, "repo-token", "", "GitHub token used for API calls")
	runCmd.Flags().StringVar(&notBefore, "not-before", "", "Ignore events created before this RFC3339 timestamp")
	runCmd.Flags().StringVar(&includeTitle, "include-title", "", "Prefix the title to the body before matching (0|1)")
	runCmd.Flags().StringVar(&syncLabels, "sync-labels", "", "Enable label removal in the default mode (0|1)")
	runCmd.Flags().StringVar(&workflow, "workflow", "check", "Workflow preset to run")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log actions without applying them")
}

// actionInput reads a GitHub Actions input variable, mirroring how the
// Actions runtime exposes inputs to the process environment.
func actionInput(name string) string {
	return strings.TrimSpace(os.Getenv("INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))))
}

func inputOrFlag(flagValue, inputName string) string {
	if flagValue != "" {
		return flagValue
	}
	return actionInput(inputName)
}

func runCheck(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	log.Printf("[run %s] issue-checker starting", runID)

	path := inputOrFlag(configPath, "configuration-path")
	if path == "" {
		return fmt.Errorf("configuration-path is required")
	}
	token := inputOrFlag(repoToken, "repo-token")
	if token == "" {
		return fmt.Errorf("repo-token is required")
	}

	params, err := resolveParams()
	if err != nil {
		return err
	}

	sync, err := config.ParseSyncLabels(inputOrFlag(syncLabels, "sync-labels"))
	if err != nil {
		return err
	}

	evt, err := event.FromActionsEnv()
	if err != nil {
		return err
	}

	gh := github.NewClient(ctx, token)

	data, err := gh.GetFileContent(ctx, evt.Owner, evt.Repo, path, os.Getenv("GITHUB_SHA"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg, err := config.Load(data, config.DefaultMode(sync))
	if err != nil {
		return err
	}
	log.Printf("[run %s] loaded %d label rules, %d comment rules",
		runID, len(cfg.Labels), len(cfg.Comments))

	deps := &pipeline.Dependencies{GitHub: gh, DryRun: dryRun}
	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	p, err := registry.BuildFromNames(pipeline.ResolveSteps(nil, workflow), deps)
	if err != nil {
		return err
	}

	pCtx := pipeline.NewContext(ctx, evt, cfg, params, deps)
	if err := p.Run(pCtx); err != nil {
		return err
	}

	if pCtx.Result.Skipped {
		log.Printf("[run %s] skipped: %s", runID, pCtx.Result.SkipReason)
		return nil
	}
	log.Printf("[run %s] done: +%d/-%d labels, %d comments posted, %d updated, %d action errors",
		runID, len(pCtx.Result.AddLabels), len(pCtx.Result.RemoveLabels),
		len(pCtx.Result.AddComments), len(pCtx.Result.UpdateComments),
		len(pCtx.Result.ActionErrors))
	return nil
}

func resolveParams() (pipeline.Params, error) {
	var params pipeline.Params

	if raw := inputOrFlag(notBefore, "not-before"); raw != "" {
		cutoff, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, fmt.Errorf("invalid not-before %q: %w", raw, err)
		}
		params.NotBefore = cutoff
	}

	switch inputOrFlag(includeTitle, "include-title") {
	case "", "0":
	case "1":
		params.IncludeTitle = true
	default:
		return params, fmt.Errorf("include-title must be 0 or 1")
	}

	return params, nil
}
