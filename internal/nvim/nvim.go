package nvim

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/neovim/go-client/nvim"
)

// Manager handles the connection and interaction with a Neovim instance.
type Manager struct {
	nvim          *nvim.Nvim
	isSelfStarted bool
	cmd           *exec.Cmd
	socketPath    string
}

// New creates a new Neovim manager, connecting to an existing instance
// or starting a new headless one.
func New() (*Manager, error) {
	// Try to connect to a running instance first.
	for _, env := range []string{"NVIM", "NVIM_LISTEN_ADDRESS"} {
		if addr := os.Getenv(env); addr != "" {
			v, err := nvim.Dial(addr)
			if err == nil {
				return &Manager{nvim: v}, nil
			}
		}
	}

	// If that fails, start a temporary headless instance.
	tmpDir, err := os.MkdirTemp("", "logconv-nvim-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for nvim: %w", err)
	}
	socketPath := filepath.Join(tmpDir, "nvim.sock")

	cmd := exec.Command("nvim", "--headless", "--clean", "--listen", socketPath)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to start headless nvim: %w. Is 'nvim' in your PATH?", err)
	}

	// Wait for the socket file to appear.
	for i := 0; i < 20; i++ {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	v, err := nvim.Dial(socketPath)
	if err != nil {
		cmd.Process.Kill()
		cmd.Wait()
		os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("failed to connect to headless nvim: %w", err)
	}

	m := &Manager{
		nvim:          v,
		isSelfStarted: true,
		cmd:           cmd,
		socketPath:    socketPath,
	}
	if err := m.configureTempInstance(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

// configureTempInstance keeps the headless editor from leaving swap files behind.
func (m *Manager) configureTempInstance() error {
	b := m.nvim.NewBatch()
	b.Command("set noswapfile")
	b.Command("set nobackup nowritebackup")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to configure headless nvim: %w", err)
	}
	return nil
}

// Close disconnects from Neovim and cleans up if it was self-started.
func (m *Manager) Close() error {
	if m.nvim != nil {
		m.nvim.Close()
	}
	if m.isSelfStarted && m.cmd != nil && m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err == nil {
			m.cmd.Wait()
			os.RemoveAll(filepath.Dir(m.socketPath))
		}
	}
	return nil
}

// Write loads modified into the buffer for path and writes it, so editors
// attached to the same instance see the new content. Nothing happens when
// modified equals original.
func (m *Manager) Write(path, original, modified string) (bool, error) {
	if original == modified {
		return false, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	lines, eol, dos := splitLines(modified)

	b := m.nvim.NewBatch()
	b.Command(fmt.Sprintf("edit! %s", escapePath(absPath)))
	b.SetBufferLines(0, 0, -1, true, lines)
	if dos {
		b.Command("setlocal fileformat=dos")
	} else {
		b.Command("setlocal fileformat=unix")
	}
	if eol {
		b.Command("setlocal eol fixeol")
	} else {
		b.Command("setlocal noeol nofixeol")
	}
	b.Command("write")
	if err := b.Execute(); err != nil {
		return false, fmt.Errorf("failed to write %s through nvim: %w", path, err)
	}
	return true, nil
}

// splitLines converts content to buffer lines. It reports whether the
// content ended with a newline and whether it uses CRLF line endings, in
// which case the carriage returns are stripped from the lines.
func splitLines(content string) (lines [][]byte, eol, dos bool) {
	dos = strings.Contains(content, "\r\n")
	eol = strings.HasSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\n")
	parts := strings.Split(content, "\n")
	lines = make([][]byte, len(parts))
	for i, s := range parts {
		if dos {
			s = strings.TrimSuffix(s, "\r")
		}
		lines[i] = []byte(s)
	}
	return lines, eol, dos
}

// escapePath escapes characters that ex commands treat specially.
func escapePath(p string) string {
	r := strings.NewReplacer(" ", `\ `, "%", `\%`, "#", `\#`, "|", `\|`)
	return r.Replace(p)
}
