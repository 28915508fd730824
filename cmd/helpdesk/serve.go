package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/4thel00z/helpdesk/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Start the chat API and keep it running until interrupted.`,
		RunE:  runServe,
	}

	cmd.Flags().Bool("watch", false, "Rebuild the knowledge base when its files change")
	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching file changes")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		go watchKnowledge(cmd, a, debounce)
	}

	go sweepSessions(cmd, a)

	srv := internal.NewServer(
		a.agent, a.index, a.sessions, a.tickets, a.orders,
		a.ollama, a.chunker, a.cfg.RAG.KnowledgePath, a.cfg.RAG.Extension,
		a.logger,
	)

	addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
	return srv.ListenAndServe(addr)
}

// sweepSessions drops expired sessions on the session timeout cadence.
// Expiry is also checked lazily on access; this pass just keeps the map
// from accumulating abandoned conversations.
func sweepSessions(cmd *cobra.Command, a *app) {
	interval := time.Duration(a.cfg.Session.TimeoutSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-cmd.Context().Done():
			return
		case <-ticker.C:
			if removed := a.sessions.Sweep(); removed > 0 {
				a.logger.Debug("swept expired sessions", "count", removed)
			}
		}
	}
}

// watchKnowledge rebuilds the index after a quiet period following any
// change under the knowledge directory.
func watchKnowledge(cmd *cobra.Command, a *app, debounce time.Duration) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		a.logger.Error("create watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, a.cfg.RAG.KnowledgePath); err != nil {
		a.logger.Error("add watch dirs", "error", err)
		return
	}

	a.logger.Info("watching knowledge base", "dir", a.cfg.RAG.KnowledgePath)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-cmd.Context().Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if shouldIgnoreEvent(event, a.cfg.RAG.Extension) {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			a.logger.Warn("watch error", "error", err)
		case <-timer.C:
			pending = false
			if err := a.index.Rebuild(cmd.Context(), a.cfg.RAG.KnowledgePath, a.cfg.RAG.Extension, a.chunker); err != nil {
				a.logger.Error("auto rebuild failed", "error", err)
				continue
			}
			a.logger.Info("knowledge base rebuilt", "documents", a.index.Stats().TotalDocuments)
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func shouldIgnoreEvent(event fsnotify.Event, ext string) bool {
	if ext != "" && filepath.Ext(event.Name) != ext {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}

	return false
}
