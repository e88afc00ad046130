package clientui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"time"

	"github.com/c-bata/go-prompt"

	"github.com/omahajan/goftpcore/internal/ftpclient"
	"github.com/omahajan/goftpcore/internal/perfmetrics"
)

// Shell drives the interactive go-prompt REPL listed under
// internal/clientui in SPEC_FULL.md "Module Layout": a themed,
// tab-completing front end over the ftpclient control-channel engine.
type Shell struct {
	client    *ftpclient.Client
	theme     *ThemeManager
	table     *TableFormatter
	completer *Completer
	logger    *slog.Logger
	metrics   *perfmetrics.Logger
}

func NewShell(logger *slog.Logger) (*Shell, error) {
	theme, err := NewThemeManager()
	if err != nil {
		return nil, err
	}
	metrics, err := perfmetrics.NewLogger("perfmetrics", "transfers.csv")
	if err != nil {
		return nil, err
	}
	return &Shell{
		theme:     theme,
		table:     NewTableFormatter(),
		completer: NewCompleter(),
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Attach adopts an already-connected client, e.g. one established via
// a -connect command-line flag before the REPL starts.
func (sh *Shell) Attach(client *ftpclient.Client) {
	sh.disconnect()
	sh.client = client
	sh.completer.SetClient(client)
}

// Run starts the prompt loop; it returns only when the user quits.
func (sh *Shell) Run() {
	sh.theme.Prompt().Println("Welcome to goftpcore")
	sh.theme.Text().Println("Type HELP-equivalent commands: OPEN, USER, LIST, RETR, STOR, QUIT")

	p := prompt.New(
		sh.executor,
		sh.completer.Complete,
		prompt.OptionTitle("goftpcore"),
		prompt.OptionLivePrefix(sh.livePrefix),
		prompt.OptionPrefixTextColor(prompt.Green),
		prompt.OptionCompletionWordSeparator(" "),
	)
	p.Run()
}

func (sh *Shell) livePrefix() (string, bool) {
	if sh.client == nil {
		return "goftp> ", true
	}
	return fmt.Sprintf("[%s]> ", sh.client.CurrentDir()), true
}

func (sh *Shell) executor(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}
	fields := strings.Fields(input)
	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "QUIT", "EXIT":
		sh.disconnect()
		os.Exit(0)
	case "OPEN":
		sh.cmdOpen(args)
	case "USER":
		sh.cmdUser(args)
	case "PWD":
		sh.cmdPWD()
	case "CWD", "CD":
		sh.cmdCWD(args)
	case "CDUP":
		sh.requireClient(func() { sh.reportErr(sh.client.Cdup()) })
	case "LIST", "LS":
		sh.cmdList(args)
	case "RETR", "GET":
		sh.cmdRetr(args)
	case "STOR", "PUT":
		sh.cmdStor(args)
	case "MKD":
		sh.cmdMkd(args)
	case "RMD":
		sh.cmdRmd(args)
	case "DELE", "RM":
		sh.cmdDele(args)
	case "RENAME":
		sh.cmdRename(args)
	case "BINARY":
		sh.requireClient(func() { sh.reportErr(sh.client.TypeBinary()) })
	case "ASCII":
		sh.requireClient(func() { sh.reportErr(sh.client.TypeASCII()) })
	case "THEME":
		sh.cmdTheme(args)
	case "MODEZ":
		sh.cmdModeZ(args)
	default:
		sh.theme.ErrorC().Printf("unknown command: %s\n", cmd)
	}
}

func (sh *Shell) requireClient(fn func()) {
	if sh.client == nil {
		sh.theme.ErrorC().Println("not connected; use OPEN host:port first")
		return
	}
	fn()
}

func (sh *Shell) reportErr(err error) {
	if err != nil {
		sh.theme.ErrorC().Println(err.Error())
		return
	}
	sh.theme.Success().Println("OK")
}

func (sh *Shell) disconnect() {
	if sh.client != nil {
		sh.client.Quit()
		sh.client = nil
	}
}

func (sh *Shell) cmdOpen(args []string) {
	if len(args) != 1 {
		sh.theme.ErrorC().Println("usage: OPEN host:port")
		return
	}
	sh.disconnect()
	client, err := ftpclient.Dial(args[0], sh.logger)
	if err != nil {
		sh.theme.ErrorC().Println(err.Error())
		return
	}
	sh.client = client
	sh.completer.SetClient(client)
	sh.theme.Success().Println("connected")
}

func (sh *Shell) cmdUser(args []string) {
	if len(args) != 2 {
		sh.theme.ErrorC().Println("usage: USER <name> <password>")
		return
	}
	sh.requireClient(func() { sh.reportErr(sh.client.Login(args[0], args[1])) })
}

func (sh *Shell) cmdPWD() {
	sh.requireClient(func() {
		dir, err := sh.client.Pwd()
		if err != nil {
			sh.theme.ErrorC().Println(err.Error())
			return
		}
		sh.theme.Info().Println(dir)
	})
}

func (sh *Shell) cmdCWD(args []string) {
	if len(args) != 1 {
		sh.theme.ErrorC().Println("usage: CWD <path>")
		return
	}
	sh.requireClient(func() { sh.reportErr(sh.client.Cwd(args[0])) })
}

func (sh *Shell) cmdList(args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	sh.requireClient(func() {
		entries, err := sh.client.List(path)
		if err != nil {
			sh.theme.ErrorC().Println(err.Error())
			return
		}
		sh.table.RenderListing(entries)
	})
}

func (sh *Shell) cmdRetr(args []string) {
	if len(args) < 1 {
		sh.theme.ErrorC().Println("usage: RETR <remote> [local]")
		return
	}
	remote := args[0]
	local := remote
	if len(args) > 1 {
		local = args[1]
	}
	sh.requireClient(func() {
		f, err := os.Create(local)
		if err != nil {
			sh.theme.ErrorC().Println(err.Error())
			return
		}
		defer f.Close()
		start := time.Now()
		err = sh.client.Retrieve(remote, f)
		sh.logTransfer("RETR", remote, f, start)
		sh.reportErr(err)
	})
}

func (sh *Shell) cmdStor(args []string) {
	if len(args) < 1 {
		sh.theme.ErrorC().Println("usage: STOR <local> [remote]")
		return
	}
	local := args[0]
	remote := local
	if len(args) > 1 {
		remote = args[1]
	}
	sh.requireClient(func() {
		f, err := os.Open(local)
		if err != nil {
			sh.theme.ErrorC().Println(err.Error())
			return
		}
		defer f.Close()
		start := time.Now()
		err = sh.client.Store(remote, f)
		sh.logTransfer("STOR", remote, f, start)
		sh.reportErr(err)
	})
}

// logTransfer records a completed transfer's size and duration to the
// performance CSV; failures to log are swallowed since metrics are
// best-effort and must never block a transfer outcome from reaching
// the user.
func (sh *Shell) logTransfer(verb, path string, f *os.File, start time.Time) {
	info, err := f.Stat()
	if err != nil {
		return
	}
	_ = sh.metrics.Log(time.Now(), perfmetrics.Transfer{
		Verb:        verb,
		Path:        path,
		SizeBytes:   info.Size(),
		Compression: sh.client != nil && sh.client.CompressionEnabled(),
		Duration:    time.Since(start),
	})
}

func (sh *Shell) cmdMkd(args []string) {
	if len(args) != 1 {
		sh.theme.ErrorC().Println("usage: MKD <path>")
		return
	}
	sh.requireClient(func() {
		_, err := sh.client.Mkd(args[0])
		sh.reportErr(err)
	})
}

func (sh *Shell) cmdRmd(args []string) {
	if len(args) != 1 {
		sh.theme.ErrorC().Println("usage: RMD <path>")
		return
	}
	sh.requireClient(func() { sh.reportErr(sh.client.Rmd(args[0])) })
}

func (sh *Shell) cmdDele(args []string) {
	if len(args) != 1 {
		sh.theme.ErrorC().Println("usage: DELE <path>")
		return
	}
	sh.requireClient(func() { sh.reportErr(sh.client.Dele(args[0])) })
}

func (sh *Shell) cmdRename(args []string) {
	if len(args) != 2 {
		sh.theme.ErrorC().Println("usage: RENAME <from> <to>")
		return
	}
	sh.requireClient(func() { sh.reportErr(sh.client.Rename(args[0], args[1])) })
}

func (sh *Shell) cmdModeZ(args []string) {
	if len(args) != 1 || (strings.ToUpper(args[0]) != "ON" && strings.ToUpper(args[0]) != "OFF") {
		sh.theme.ErrorC().Println("usage: MODEZ <ON|OFF>")
		return
	}
	sh.requireClient(func() {
		sh.reportErr(sh.client.SetCompression(strings.ToUpper(args[0]) == "ON"))
	})
}

func (sh *Shell) cmdTheme(args []string) {
	if len(args) != 1 {
		sh.theme.ErrorC().Println("usage: THEME <light|dark>")
		return
	}
	if err := sh.theme.SetTheme(args[0]); err != nil {
		sh.theme.ErrorC().Println(err.Error())
	}
}
