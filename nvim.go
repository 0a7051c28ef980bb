package edmv

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/neovim/go-client/nvim"
)

const (
	nvimDoneMethod   = "edmv_done"
	nvimPollInterval = 500 * time.Millisecond
)

// NvimAddress returns the RPC address of the Neovim instance this process
// runs in, or "" outside of one.
func NvimAddress() string {
	if addr := os.Getenv("NVIM"); addr != "" {
		return addr
	}
	return os.Getenv("NVIM_LISTEN_ADDRESS")
}

// NvimEditor opens the file in a tab of an already running Neovim and waits
// until the user deletes that buffer.
type NvimEditor struct {
	Address string
	log     *Logger
}

func NewNvimEditor(addr string, log *Logger) *NvimEditor {
	if log == nil {
		log = nopLogger()
	}
	return &NvimEditor{Address: addr, log: log}
}

func (e *NvimEditor) Edit(path string) error {
	v, err := nvim.Dial(e.Address)
	if err != nil {
		return fmt.Errorf("%w: nvim at %q: %w", ErrEditorSpawn, e.Address, err)
	}
	defer v.Close()

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }
	if err := v.RegisterHandler(nvimDoneMethod, func() { finish() }); err != nil {
		return fmt.Errorf("%w: nvim handler: %w", ErrEditorSpawn, err)
	}

	buf, err := e.open(v, path)
	if err != nil {
		return fmt.Errorf("%w: nvim at %q: %w", ErrEditorSpawn, e.Address, err)
	}
	e.log.Debug("editing %q in nvim buffer %d", path, int(buf))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	ticker := time.NewTicker(nvimPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-sig:
			return &EditorExitError{Command: "nvim " + e.Address, Status: -1}
		case <-ticker.C:
			valid, err := v.IsBufferValid(buf)
			if err != nil {
				e.log.Warn("lost connection to nvim: %v", err)
				return &EditorExitError{Command: "nvim " + e.Address, Status: -1}
			}
			if !valid {
				return nil
			}
		}
	}
}

func (e *NvimEditor) open(v *nvim.Nvim, path string) (nvim.Buffer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}

	var escaped string
	if err := v.Call("fnameescape", &escaped, abs); err != nil {
		return 0, err
	}
	if err := v.Command("tabedit " + escaped); err != nil {
		return 0, err
	}

	buf, err := v.CurrentBuffer()
	if err != nil {
		return 0, err
	}

	b := v.NewBatch()
	b.Command("setlocal noswapfile bufhidden=wipe")
	b.Command(fmt.Sprintf("autocmd BufDelete,BufWipeout <buffer=%d> ++once call rpcnotify(%d, '%s')", int(buf), v.ChannelID(), nvimDoneMethod))
	return buf, b.Execute()
}
