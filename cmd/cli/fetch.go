package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/internal/app"
	"github.com/yourusername/ncea-extract-go/internal/domain"
)

// exitStrictFailure is the exit code of a --strict batch with failed tasks
const exitStrictFailure = 2

// continueToken ends interactive standard entry
const continueToken = "c"

var fetchCmd = &cobra.Command{
	Use:   "fetch [standards...]",
	Short: "Download papers for one or more achievement standards",
	Long: `Download assessment papers, marking schedules and exemplars for each standard.
Without arguments, standard numbers are read interactively until "c" is entered.
Non-numeric values and duplicates are ignored.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt, err := loadRuntime()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer rt.Close()

		if err := applyFetchFlags(cmd, rt.Config); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ids, rejected := parseStandards(args)
		for _, raw := range rejected {
			rt.Logger.Warn("Ignoring invalid standard number", zap.String("value", raw))
		}
		if len(args) == 0 {
			ids, err = promptStandards(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
		if len(ids) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no valid standard numbers given")
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		snapshot, err := rt.Scheduler.Run(ctx, ids, rt.Config.Download.Years, rt.Config.Download.Kinds)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			rt.Close()
			os.Exit(1)
		}

		fmt.Fprintln(cmd.OutOrStdout())
		app.RenderSummary(cmd.OutOrStdout(), snapshot)

		strict, _ := cmd.Flags().GetBool("strict")
		if strict && snapshot.Failed > 0 {
			rt.Close()
			os.Exit(exitStrictFailure)
		}
	},
}

func init() {
	fetchCmd.Flags().IntSliceP("years", "y", nil, "Years to download (default 2012-2023)")
	fetchCmd.Flags().StringSliceP("kinds", "k", nil, "Component kinds: Answers, Assessment, Excellence, Merit, Achievement")
	fetchCmd.Flags().IntP("workers", "w", 0, "Number of concurrent downloads")
	fetchCmd.Flags().StringP("dest", "d", "", "Destination root directory")
	fetchCmd.Flags().Bool("strict", false, "Exit with code 2 if any download failed")
}

// applyFetchFlags overrides the configuration with explicitly set flags
func applyFetchFlags(cmd *cobra.Command, config *domain.Config) error {
	flags := cmd.Flags()
	if flags.Changed("years") {
		years, _ := flags.GetIntSlice("years")
		config.Download.Years = years
	}
	if flags.Changed("kinds") {
		raw, _ := flags.GetStringSlice("kinds")
		kinds := make([]domain.ComponentKind, 0, len(raw))
		for _, k := range raw {
			kind := domain.ComponentKind(k)
			if !domain.ValidateKind(kind) {
				return fmt.Errorf("unknown component kind: %s", k)
			}
			kinds = append(kinds, kind)
		}
		config.Download.Kinds = kinds
	}
	if flags.Changed("workers") {
		workers, _ := flags.GetInt("workers")
		if workers < 1 {
			return fmt.Errorf("workers must be at least 1")
		}
		config.Download.ConcurrentLimit = workers
	}
	if flags.Changed("dest") {
		dest, _ := flags.GetString("dest")
		config.Download.BaseDir = dest
	}
	return nil
}

// parseStandards keeps numeric standard numbers in order without duplicates
// and returns the rejected values separately
func parseStandards(values []string) (ids []domain.StandardID, rejected []string) {
	seen := make(map[domain.StandardID]bool)
	for _, v := range values {
		id, err := domain.ParseStandardID(v)
		if err != nil {
			rejected = append(rejected, v)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, rejected
}

// promptStandards reads standard numbers until the continue token is
// entered with at least one valid number collected
func promptStandards(in io.Reader, out io.Writer) ([]domain.StandardID, error) {
	scanner := bufio.NewScanner(in)
	var collected []string

	for {
		fmt.Fprintf(out, "Enter standard number(s), or %q to continue: ", continueToken)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			ids, _ := parseStandards(collected)
			if len(ids) == 0 {
				return nil, errors.New("input closed before any standard was entered")
			}
			return ids, nil
		}

		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, continueToken) {
			ids, _ := parseStandards(collected)
			if len(ids) > 0 {
				return ids, nil
			}
			fmt.Fprintln(out, "No standards entered yet.")
			continue
		}

		for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			if _, err := domain.ParseStandardID(field); err != nil {
				fmt.Fprintf(out, "Ignoring %q: not a standard number\n", field)
				continue
			}
			collected = append(collected, field)
		}
	}
}
