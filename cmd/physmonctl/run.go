package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/exaring/physmon"
	"github.com/exaring/physmon/demolayer"
)

// monitorHolder defers resolving the *physmon.Monitor until after both it and the layer wrapping it are
// constructed, the same construction-order problem physmon's own tests solve the same way.
type monitorHolder struct {
	m *physmon.Monitor
}

func (h *monitorHolder) OnLayerOpen() error   { return h.m.OnLayerOpen() }
func (h *monitorHolder) OnOpenFailure() error { return h.m.OnOpenFailure() }
func (h *monitorHolder) OnLayerClose() error  { return h.m.OnLayerClose() }

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Replay a scripted event sequence against a fresh Monitor and print the resulting trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScript(args[0])
			if err != nil {
				return err
			}
			return runScript(s)
		},
	}
	return cmd
}

// traceRow is one printed line of the state trace: the event that was applied, the dispatch error (if
// any), and the Monitor's resulting ObservableState.
type traceRow struct {
	event string
	err   string
	state string
}

func runScript(s *script) error {
	holder := &monitorHolder{}
	layer := newCLILayer(holder)
	timers := &demolayer.ManualTimerService{}

	mon, err := physmon.NewMonitor(layer, physmon.WithTimerService(timers))
	if err != nil {
		return fmt.Errorf("constructing monitor: %w", err)
	}
	holder.m = mon

	var rows []traceRow
	record := func(event string, dispatchErr error) {
		// Wait for any goroutine the intent just triggered (AsyncOpen/AsyncClose) to deliver its
		// callback before reading the resulting state, so the trace reflects a settled Monitor rather
		// than a race with the still-running layer goroutine.
		if waitErr := layer.Wait(); waitErr != nil && dispatchErr == nil {
			dispatchErr = waitErr
		}

		errText := ""
		if dispatchErr != nil {
			errText = dispatchErr.Error()
		}
		rows = append(rows, traceRow{event: event, err: errText, state: mon.State().String()})
	}

	for _, st := range s.Steps {
		switch {
		case st.Intent != "":
			if st.Intent == "start" {
				layer.failNext = st.Fail
			}
			record(st.Intent, dispatchIntent(mon, st.Intent))
		case st.FireTimer:
			timers.Fire()
			record("fire_timer", nil)
		default:
			return fmt.Errorf("script step has no intent and does not fire_timer")
		}
	}

	printTrace(s.Name, rows)
	return nil
}

func dispatchIntent(mon *physmon.Monitor, intent string) error {
	switch intent {
	case "start":
		return mon.Start()
	case "close":
		return mon.Close()
	case "suspend":
		return mon.Suspend()
	case "shutdown":
		return mon.Shutdown()
	default:
		return fmt.Errorf("unknown intent %q", intent)
	}
}

func printTrace(name string, rows []traceRow) {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Println(bold(name))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Event", "State", "Error")
	tbl.WithHeaderFormatter(headerFmt)

	for _, r := range rows {
		state := cyan(r.state)
		errText := r.err
		if errText != "" {
			errText = red(errText)
		}
		tbl.AddRow(r.event, state, errText)
	}

	tbl.Print()
}
