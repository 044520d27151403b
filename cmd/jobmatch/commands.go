package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobmatch/internal/domain/profile"
	"github.com/kailas-cloud/jobmatch/internal/export"
	chiTransport "github.com/kailas-cloud/jobmatch/internal/transport/chi"
	ingestuc "github.com/kailas-cloud/jobmatch/internal/usecase/ingest"
	"github.com/kailas-cloud/jobmatch/internal/version"
)

var (
	matchSkills  []string
	matchProfile string
	matchTop     int
	matchXLSX    string

	trendTitles []string

	keywordsFile string
	keywordsTop  int

	resumeFile string
	resumeXLSX string

	indexImport         string
	indexReindexCorrupt bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Retrieve and rank postings for a skill list",
	RunE:  runMatch,
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Salary trends for job titles",
	RunE:  runTrends,
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Weighted keyphrases of a text file",
	RunE:  runKeywords,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Extract skills from a resume and match it",
	RunE:  runResume,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Import postings and embed those without a vector",
	RunE:  runIndex,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	matchCmd.Flags().StringSliceVar(&matchSkills, "skills", nil, "Comma-separated candidate skills (required)")
	matchCmd.Flags().StringVar(&matchProfile, "profile", "", "Path to a candidate profile JSON object")
	matchCmd.Flags().IntVar(&matchTop, "top", 0, "Number of matches (default from config)")
	matchCmd.Flags().StringVar(&matchXLSX, "xlsx", "", "Also write matches and trends to this workbook")
	mustMarkRequired(matchCmd, "skills")

	trendsCmd.Flags().StringArrayVar(&trendTitles, "title", nil, "Exact job title (repeatable, required)")
	mustMarkRequired(trendsCmd, "title")

	keywordsCmd.Flags().StringVar(&keywordsFile, "file", "", "Text file to analyse (required, - for stdin)")
	keywordsCmd.Flags().IntVar(&keywordsTop, "top", 0, "Number of keyphrases (default from config)")
	mustMarkRequired(keywordsCmd, "file")

	resumeCmd.Flags().StringVar(&resumeFile, "file", "", "Resume text file (required, - for stdin)")
	resumeCmd.Flags().StringVar(&resumeXLSX, "xlsx", "", "Also write matches and trends to this workbook")
	mustMarkRequired(resumeCmd, "file")

	indexCmd.Flags().StringVar(&indexImport, "import", "", "JSON array of postings to upsert before indexing")
	indexCmd.Flags().BoolVar(&indexReindexCorrupt, "reindex-corrupt", false, "Re-embed postings whose stored vector is corrupt")

	rootCmd.AddCommand(serveCmd, matchCmd, trendsCmd, keywordsCmd, resumeCmd, indexCmd, versionCmd)
}

func mustMarkRequired(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
	}
}

// withEngine runs fn against a freshly loaded engine and tears it down after.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, a *app, e *engine) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, envFlag)
	if err != nil {
		return err
	}
	defer a.close()

	e, err := a.loadEngine(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, a, e)
}

func runServe(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(_ context.Context, a *app, e *engine) error {
		cfg := a.cfg
		a.logger.Info("Starting jobmatch API server",
			zap.String("version", version.Version),
			zap.String("commit", version.Commit),
			zap.String("env", a.env),
			zap.Int("http_port", cfg.HTTP.Port),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Int("postings", e.snapshot.Len()),
		)

		server := chiTransport.NewServer(e.matcher, e.health, a.logger)
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		srv := &http.Server{
			Addr:              addr,
			Handler:           server.Router(cfg.Auth.APIKeys),
			ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		}

		// Graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("Starting HTTP server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		case <-quit:
			a.logger.Info("Received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Error during shutdown", zap.Error(err))
		}
		a.logger.Info("Server stopped gracefully")
		return nil
	})
}

func runMatch(cmd *cobra.Command, _ []string) error {
	prof, err := readProfile(matchProfile)
	if err != nil {
		return err
	}

	return withEngine(cmd, func(ctx context.Context, _ *app, e *engine) error {
		report, err := e.matcher.RetrieveAndRank(ctx, profile.Candidate{Skills: matchSkills, Profile: prof}, matchTop)
		if err != nil {
			return fmt.Errorf("match: %w", err)
		}

		if matchXLSX != "" {
			trends, err := e.matcher.SalaryTrend(ctx, report.Titles())
			if err != nil {
				return fmt.Errorf("salary trend: %w", err)
			}
			path, err := export.WriteMatches(matchXLSX, report.Matches, trends)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		}
		return printJSON(cmd.OutOrStdout(), report)
	})
}

func runTrends(cmd *cobra.Command, _ []string) error {
	return withEngine(cmd, func(ctx context.Context, _ *app, e *engine) error {
		trends, err := e.matcher.SalaryTrend(ctx, trendTitles)
		if err != nil {
			return fmt.Errorf("salary trend: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), trends)
	})
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	text, err := readText(cmd, keywordsFile)
	if err != nil {
		return err
	}
	return withEngine(cmd, func(ctx context.Context, _ *app, e *engine) error {
		return printJSON(cmd.OutOrStdout(), e.matcher.KeywordFrequencies(ctx, text, keywordsTop))
	})
}

func runResume(cmd *cobra.Command, _ []string) error {
	text, err := readText(cmd, resumeFile)
	if err != nil {
		return err
	}
	return withEngine(cmd, func(ctx context.Context, _ *app, e *engine) error {
		res, err := e.matcher.ProcessResume(ctx, text)
		if err != nil {
			return fmt.Errorf("process resume: %w", err)
		}
		if resumeXLSX != "" {
			path, err := export.WriteMatches(resumeXLSX, res.Matches, res.SalaryTrend)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		}
		return printJSON(cmd.OutOrStdout(), res)
	})
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, envFlag)
	if err != nil {
		return err
	}
	defer a.close()

	svc := a.ingest()
	if indexImport != "" {
		f, err := os.Open(filepath.Clean(indexImport))
		if err != nil {
			return fmt.Errorf("open %s: %w", indexImport, err)
		}
		postings, err := ingestuc.ReadPostings(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", indexImport, err)
		}
		if _, err := svc.Import(ctx, postings); err != nil {
			return err
		}
	}

	res, err := svc.IndexMissing(ctx, indexReindexCorrupt)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func readProfile(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}
	var prof map[string]any
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return prof, nil
}

func readText(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
