package edmv

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type CLIConfig struct {
	Editor     string
	ConfigPath string
	Color      string
	Completion string
	Clipboard  bool
	DryRun     bool
	Remote     bool
	Quiet      bool
	Verbose    bool
}

func NewRootCmd() *cobra.Command {
	cfg := &CLIConfig{}

	cmd := &cobra.Command{
		Use:   "edmv [flags] FILES...",
		Short: "Rename files with an external editor.",
		Long: `Rename FILES by editing their names in a text editor.

The editor is given a file with one path per line. Change the lines, save and
quit; each file is then renamed to the line at its position. A blank line or
an unchanged line leaves the file alone. Swaps and cycles are safe.

The editor is chosen by --editor, the "editor" key of the [Main] section of
the config file, $VISUAL or $EDITOR, in this order.

Example: edmv *.jpg`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Completion != "" {
				return handleCompletion(cmd, cfg.Completion)
			}
			if len(args) == 0 && !cfg.Clipboard {
				return cmd.Help()
			}
			return run(cmd, cfg, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Editor, "editor", "e", "", "Editor to use")
	f.StringVar(&cfg.ConfigPath, "config", "", "Config file (default "+DefaultConfigPath()+")")
	f.StringVar(&cfg.Color, "color", string(ColorAuto), "Colorize messages: auto, always or never")
	f.StringVar(&cfg.Completion, "completion", "", "Generate completion script")
	f.BoolVarP(&cfg.Clipboard, "clipboard", "c", false, "Also read paths from the clipboard, one per line")
	f.BoolVarP(&cfg.DryRun, "dry-run", "n", false, "Print the renames as YAML instead of doing them")
	f.BoolVarP(&cfg.Remote, "remote", "r", false, "Edit in the running nvim ($NVIM)")
	f.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Do not print a summary")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print debug messages")

	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	return cmd
}

func run(cmd *cobra.Command, cfg *CLIConfig, args []string) error {
	mode := ColorMode(cfg.Color)
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: unknown color mode %q", ErrInvalidInput, cfg.Color)
	}

	level := LevelInfo
	if cfg.Verbose {
		level = LevelDebug
	}
	log := NewLogger(cmd.ErrOrStderr(), level, mode)

	inputs, err := NewSourceProvider().GetInputs(args, cfg.Clipboard)
	if err != nil {
		return fmt.Errorf("failed to read the clipboard: %w", err)
	}
	if len(inputs) == 0 {
		log.Info("no files given")
		return nil
	}

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	fc, err := LoadFileConfig(configPath)
	if err != nil {
		log.Warn("ignoring config file: %v", err)
	}

	remote := cfg.Remote || fc.Main.Remote
	editor, err := ResolveEditor(cfg.Editor, fc)
	if err != nil && !(remote && NvimAddress() != "") {
		return err
	}

	app, err := NewApp(&Config{
		Editor:     editor,
		Inputs:     inputs,
		ScratchDir: ResolveScratchDir(),
		Remote:     remote,
		DryRun:     cfg.DryRun,
	}, log)
	if err != nil {
		return err
	}
	app.out = cmd.OutOrStdout()

	summary, err := app.Execute()
	var detailed *DetailedError
	if errors.As(err, &detailed) {
		log.Debug("%s", detailed.Stack)
	}
	if !cfg.Quiet && !cfg.DryRun {
		printSummary(cmd.ErrOrStderr(), summary)
	}
	return err
}

func printSummary(w io.Writer, s Summary) {
	if out := FormatSummary(s); out != "" {
		fmt.Fprint(w, out)
	}
}

func handleCompletion(cmd *cobra.Command, shell string) error {
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletion(os.Stdout)
	case "zsh":
		return cmd.Root().GenZshCompletion(os.Stdout)
	case "fish":
		return cmd.Root().GenFishCompletion(os.Stdout, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return fmt.Errorf("unsupported shell for completion: %s", shell)
	}
}

func Execute() error {
	return NewRootCmd().Execute()
}
