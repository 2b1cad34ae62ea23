package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mtsignal/sigweave/internal/importer"
	"github.com/mtsignal/sigweave/internal/orchestrator"
)

var (
	importYes   bool
	importAbort bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import signal data from CSV templates or PDF documentation",
}

var importSignalsCmd = &cobra.Command{
	Use:   "signals <csv-file>",
	Short: "Import the signals template CSV",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore(cmd.Context())
		defer func() { _ = store.Close() }()
		runImport(cmd, &importer.SignalCSV{Path: args[0], Store: store})
	},
}

var importBoxesCmd = &cobra.Command{
	Use:   "boxes <csv-file>",
	Short: "Import the box wiring template CSV",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore(cmd.Context())
		defer func() { _ = store.Close() }()
		runImport(cmd, &importer.BoxConnCSV{Path: args[0], Store: store})
	},
}

var importPDFCmd = &cobra.Command{
	Use:   "pdf <pdf-file>",
	Short: "Extract signals and wiring runs from PDF documentation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore(cmd.Context())
		defer func() { _ = store.Close() }()
		runImport(cmd, &importer.PDF{Path: args[0], Store: store})
	},
}

func init() {
	importCmd.PersistentFlags().BoolVarP(&importYes, "yes", "y", false, "Continue past fatal errors without asking")
	importCmd.PersistentFlags().BoolVar(&importAbort, "abort-on-error", false, "Abort on the first fatal error without asking")
	importCmd.AddCommand(importSignalsCmd)
	importCmd.AddCommand(importBoxesCmd)
	importCmd.AddCommand(importPDFCmd)
	rootCmd.AddCommand(importCmd)
}

// runImport starts one orchestrated job and consumes its event stream until
// the terminal event. Ctrl-C requests a cooperative cancel; a second Ctrl-C
// kills the process the usual way.
func runImport(cmd *cobra.Command, imp importer.Importer) {
	orch := orchestrator.New(logger, cfg.LogDir)
	job, err := orch.Start(cmd.Context(), imp)
	if err != nil {
		fail("Error: %v", err)
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		if _, ok := <-interrupts; ok {
			fmt.Fprintln(os.Stderr, warnStyle.Render("cancel requested, finishing the current unit..."))
			signal.Stop(interrupts)
			job.Cancel()
		}
	}()

	progressShown := false
	endProgress := func() {
		if progressShown {
			fmt.Println()
			progressShown = false
		}
	}

	exitCode := 0
	for ev := range job.Events() {
		switch ev.Kind {
		case orchestrator.EventStarted:
			fmt.Printf("Importing %s...\n", imp.Format())

		case orchestrator.EventProgress:
			fmt.Printf("\r  %d units processed", ev.Progress)
			progressShown = true

		case orchestrator.EventAskConfirm:
			endProgress()
			job.SubmitDecision(resolveConfirm(ev.Question))

		case orchestrator.EventReport:
			endProgress()
			printReport(ev)

		case orchestrator.EventFinished:
			endProgress()
			fmt.Println(successStyle.Render("✓ " + ev.Summary.String()))

		case orchestrator.EventCanceled:
			endProgress()
			fmt.Println(warnStyle.Render("Import canceled. Persisted so far: " + ev.Summary.String()))

		case orchestrator.EventError:
			endProgress()
			fmt.Fprintln(os.Stderr, errorStyle.Render("Import failed: "+ev.Err.Error()))
			exitCode = 1
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// resolveConfirm answers a fatal-error confirm: flags first, otherwise an
// interactive prompt.
func resolveConfirm(question string) bool {
	if importYes {
		fmt.Println(warnStyle.Render(question + " -> continuing (--yes)"))
		return true
	}
	if importAbort {
		fmt.Println(warnStyle.Render(question + " -> aborting (--abort-on-error)"))
		return false
	}

	cont := true
	confirm := huh.NewConfirm().
		Title("Import error").
		Description(question).
		Affirmative("Continue").
		Negative("Abort").
		Value(&cont)
	if err := huh.NewForm(huh.NewGroup(confirm)).Run(); err != nil {
		// Prompt failure (no TTY, Ctrl-C): abort, never silently continue.
		fmt.Fprintln(os.Stderr, warnStyle.Render("prompt unavailable, aborting import"))
		return false
	}
	return cont
}

func printReport(ev orchestrator.Event) {
	if len(ev.Warnings) == 0 {
		return
	}
	fmt.Println(warnStyle.Render(fmt.Sprintf("%d warning(s):", len(ev.Warnings))))
	const maxShown = 10
	for i, w := range ev.Warnings {
		if i == maxShown {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(ev.Warnings)-maxShown)))
			break
		}
		fmt.Println("  " + w.String())
	}
	if ev.LogPath != "" {
		fmt.Println(dimStyle.Render("Full warning log: " + ev.LogPath))
	}
}
