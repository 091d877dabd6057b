// Package main provides the CLI entrypoint for typist.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quickbrown/typist/internal/config"
	"github.com/quickbrown/typist/internal/model"
	"github.com/quickbrown/typist/internal/store"
	"github.com/quickbrown/typist/internal/texts"
	"github.com/quickbrown/typist/internal/tui"
)

const defaultWidthMargin = 4

var (
	practiceFile      string
	practiceSave      string
	practiceNoLoading bool
	practiceWidth     int
	practiceTextsDir  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typist",
		Short:         "Terminal typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVarP(&practiceFile, "file", "f", "", "text file to practice ('-' reads stdin)")
	rootCmd.Flags().StringVarP(&practiceSave, "save", "s", "", "portable JSON save file to load and write")
	rootCmd.Flags().BoolVar(&practiceNoLoading, "no-loading", false, "skip the loading screen")
	rootCmd.Flags().IntVar(&practiceWidth, "force-width", 0, "force a wrap width (0 = detect)")
	rootCmd.Flags().StringVar(&practiceTextsDir, "texts-dir", "", "folder with practice texts")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newTextsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "texts-dir", &practiceTextsDir, fileCfg.Practice.TextsDir)
	applyIntConfig(cmd, "force-width", &practiceWidth, fileCfg.Practice.Width)
	applyBoolConfig(cmd, "no-loading", &practiceNoLoading, fileCfg.Practice.NoLoading)

	blink := true
	if fileCfg.Practice.Blink != nil {
		blink = *fileCfg.Practice.Blink
	}
	if practiceTextsDir == "" {
		practiceTextsDir = config.DefaultTextsDir()
	}
	if practiceWidth < 0 {
		return fmt.Errorf("--force-width must be >= 0")
	}

	cfg := model.Config{
		TextsDir:  practiceTextsDir,
		Width:     resolveWidth(practiceWidth),
		NoLoading: practiceNoLoading,
		Blink:     blink,
		FilePath:  practiceFile,
		SavePath:  practiceSave,
	}

	text, sourcePath, err := initialText(cfg)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := tui.NewModel(cfg, st, text, sourcePath)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// initialText loads the target text when --file is given; otherwise the TUI
// picker chooses one.
func initialText(cfg model.Config) (text, sourcePath string, err error) {
	switch {
	case cfg.FilePath == "":
		return "", "", nil
	case cfg.FilePath == "-":
		text, err = texts.ReadStdin(os.Stdin)
		if err != nil {
			return "", "", err
		}
		if text == "" {
			return "", "", fmt.Errorf("stdin text is empty")
		}
		return text, "", nil
	default:
		text, err = texts.LoadFile(cfg.FilePath)
		if err != nil {
			return "", "", err
		}
		return text, cfg.FilePath, nil
	}
}

// resolveWidth picks the wrap width: the forced/config value, the terminal
// width minus a margin, or the layout default.
func resolveWidth(forced int) int {
	if forced > 0 {
		return forced
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w - defaultWidthMargin
	}
	return 0
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "List practice texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsCmd,
	}
	cmd.Flags().StringVar(&practiceTextsDir, "texts-dir", "", "folder with practice texts")
	return cmd
}

func runTextsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "texts-dir", &practiceTextsDir, fileCfg.Practice.TextsDir)
	if practiceTextsDir == "" {
		practiceTextsDir = config.DefaultTextsDir()
	}

	entries, err := texts.Scan(practiceTextsDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		logErrf("No texts found. Drop .txt files into %s\n", practiceTextsDir)
		return fmt.Errorf("no texts found")
	}
	for _, entry := range entries {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", entry.Name, entry.Size); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return `# typist configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# texts-dir = ""        # Folder with practice .txt files
# width = 0             # Wrap width (0 = detect from the terminal)
# no-loading = false    # Skip the loading screen
# blink = true          # Blink the next-character highlight
`
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
