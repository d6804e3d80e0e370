// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/jeranaias/skilldeck/internal/api"
	"github.com/jeranaias/skilldeck/internal/config"
	"github.com/jeranaias/skilldeck/internal/jobs"
	"github.com/jeranaias/skilldeck/internal/scan"
)

// jobTimeout bounds how long a CLI-driven job may run.
const jobTimeout = 10 * time.Minute

// HandleInstall installs the selected tool and waits for the job to
// finish, streaming log lines when --verbose is set.
func HandleInstall(args Args) error {
	cfg := config.Global()
	tool, err := resolveTool(args, cfg)
	if err != nil {
		return err
	}
	client := newClient(cfg)

	ctx, cancel := signalContext(jobTimeout)
	defer cancel()

	status, err := client.GetToolStatus(ctx, tool)
	if err != nil {
		return err
	}
	if status.Installed {
		if !args.Quiet {
			fmt.Printf("%s is already installed\n", tool)
		}
		return nil
	}

	done := make(chan *jobs.Job, 1)
	printer := newLogPrinter(args.Verbose)

	var monitor *jobs.Monitor
	monitor = jobs.NewMonitor(jobs.MonitorConfig{
		Interval:   cfg.PollInterval(),
		Fetch:      client.GetJob,
		OnUpdate:   func(*jobs.Job) { printer.print(monitor.Sink().Entries()) },
		OnComplete: func(j *jobs.Job) { done <- j },
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "poll error: %v\n", err)
		},
	})

	if !args.Quiet {
		fmt.Printf("installing %s...\n", tool)
	}
	if _, err := monitor.Start(ctx, func(ctx context.Context) (*jobs.Job, error) {
		return client.StartInstall(ctx, tool)
	}); err != nil {
		return err
	}

	select {
	case job := <-done:
		if job.Status != jobs.StatusSucceeded {
			return fmt.Errorf("install %s: job %s %s", tool, job.ID, job.Status)
		}
		if !args.Quiet {
			fmt.Printf("%s installed\n", tool)
		}
		return nil
	case <-ctx.Done():
		monitor.Cancel()
		return fmt.Errorf("install %s: %w", tool, ctx.Err())
	}
}

// HandleScan scans for projects and prints the resulting list.
func HandleScan(args Args) error {
	cfg := config.Global()
	tool, err := resolveTool(args, cfg)
	if err != nil {
		return err
	}
	client := newClient(cfg)

	ctx, cancel := signalContext(jobTimeout)
	defer cancel()

	var (
		resultMu sync.Mutex
		lastJob  *jobs.Job
	)
	done := make(chan []api.Project, 1)

	orch := scan.New(client, tool, cfg.PollInterval(), scan.Callbacks{
		OnJobUpdate: func(j *jobs.Job) {
			resultMu.Lock()
			lastJob = j
			resultMu.Unlock()
		},
		OnLog: func(line string) {
			if args.Verbose {
				fmt.Println(line)
			}
		},
		OnProjects: func(projects []api.Project) { done <- projects },
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "poll error: %v\n", err)
		},
	})
	defer orch.Teardown()

	if !args.Quiet {
		fmt.Printf("scanning for %s projects...\n", tool)
	}
	if err := orch.Start(ctx); err != nil {
		if api.IsNotInstalled(err) {
			return fmt.Errorf("%s is not installed; run 'skilldeck install --tool %s' first", tool, tool)
		}
		return err
	}

	select {
	case projects := <-done:
		resultMu.Lock()
		job := lastJob
		resultMu.Unlock()
		if job != nil && job.Status == jobs.StatusFailed {
			return fmt.Errorf("scan %s: job %s failed", tool, job.ID)
		}
		printProjects(projects, args)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scan %s: %w", tool, ctx.Err())
	}
}

func printProjects(projects []api.Project, args Args) {
	if len(projects) == 0 {
		fmt.Println("no projects found")
		return
	}
	for _, p := range projects {
		marker := " "
		if p.Pinned {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-30s", marker, p.Name)
		if p.SkillCount > 0 {
			line += fmt.Sprintf("  %d skills", p.SkillCount)
		}
		if !p.LastUpdated.IsZero() {
			line += "  " + p.LastUpdated.Format("2006-01-02")
		}
		if args.Verbose {
			line += "  " + p.Path
		}
		fmt.Println(line)
	}
}

// signalContext returns a context cancelled by SIGINT or the timeout.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(context.Background(), timeout)
	ctx, cancelSignal := signal.NotifyContext(ctx, os.Interrupt)
	return ctx, func() {
		cancelSignal()
		cancelTimeout()
	}
}

// logPrinter prints only the sink entries not yet seen, tracked by
// sequence number so a sink reset between jobs cannot replay lines.
type logPrinter struct {
	mu      sync.Mutex
	lastSeq uint64
	enabled bool
}

func newLogPrinter(enabled bool) *logPrinter {
	return &logPrinter{enabled: enabled}
}

func (p *logPrinter) print(entries []jobs.LogEntry) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range entries {
		if e.Seq <= p.lastSeq {
			continue
		}
		fmt.Println(e.Line)
		p.lastSeq = e.Seq
	}
}
