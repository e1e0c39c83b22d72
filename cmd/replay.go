package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/conneroisu/vedit/internal/protocol"
	"github.com/conneroisu/vedit/internal/tracker"
	"github.com/conneroisu/vedit/internal/tracker/htmldom"
	"github.com/conneroisu/vedit/internal/types"
	"github.com/spf13/cobra"
)

var (
	replayLayout string
	replayEvents string
	replayRender bool
)

var replayCmd = &cobra.Command{
	Use:   "replay HTML",
	Short: "Run recorded pointer and message events through the element tracker",
	Long: `Replay a recorded session against an HTML document and print every
message the tracker posts to the editor, one JSON object per line.

--layout maps data-ve-id values to boxes:
  {"hero": {"x": 0, "y": 0, "width": 800, "height": 200}}

--events is a JSON array. Each event has a "type" of mousemove, click,
mousedown, mouseup, keydown, scroll, focus or message:
  [{"type": "message", "message": {"type": "VISUAL_EDITOR_INIT", "payload": {"enabled": true}}},
   {"type": "mousemove", "x": 10, "y": 10},
   {"type": "click", "x": 10, "y": 10, "ctrl": true},
   {"type": "keydown", "key": "Delete"}]

Examples:
  vedit replay page.html --layout layout.json --events events.json
  vedit replay page.html --layout layout.json --events events.json --render`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

// replayEvent is one recorded browser or parent-frame event.
type replayEvent struct {
	Type    string            `json:"type"`
	X       float64           `json:"x"`
	Y       float64           `json:"y"`
	Ctrl    bool              `json:"ctrl"`
	Meta    bool              `json:"meta"`
	Shift   bool              `json:"shift"`
	Key     string            `json:"key"`
	Focused bool              `json:"focused"`
	Message *protocol.Message `json:"message"`
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayLayout, "layout", "", "Element layout file (JSON)")
	replayCmd.Flags().StringVar(&replayEvents, "events", "", "Event list file (JSON, - for stdin)")
	replayCmd.Flags().BoolVar(&replayRender, "render", false, "Print the document after the replay")
	replayCmd.MarkFlagRequired("events")
}

func runReplay(cmd *cobra.Command, args []string) error {
	source, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	layout := make(map[string]types.Rect)
	if replayLayout != "" {
		if err := readJSONFile(cmd, replayLayout, &layout); err != nil {
			return err
		}
	}

	var events []replayEvent
	if err := readJSONFile(cmd, replayEvents, &events); err != nil {
		return err
	}

	return replay(cmd.OutOrStdout(), source, layout, events, replayRender)
}

// replay feeds events to a tracker over the parsed document and writes each
// emitted message as a line of JSON. render appends the final document.
func replay(out io.Writer, source []byte, layout map[string]types.Rect, events []replayEvent, render bool) error {
	boxes := make(map[string]types.Rect, len(layout))
	for id, r := range layout {
		boxes[id] = types.NewRect(r.X, r.Y, r.Width, r.Height)
	}

	doc, err := htmldom.Parse(bytes.NewReader(source), boxes)
	if err != nil {
		return err
	}

	var emitErr error
	ctrl := tracker.New(doc, func(msg protocol.Message) {
		data, err := protocol.Encode(msg)
		if err != nil {
			emitErr = err
			return
		}
		if _, err := fmt.Fprintln(out, string(data)); err != nil {
			emitErr = err
		}
	})

	for i, event := range events {
		if err := dispatch(ctrl, doc, event); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, event.Type, err)
		}
		if emitErr != nil {
			return emitErr
		}
	}

	if render {
		rendered, err := doc.Render()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, rendered)
		return err
	}
	return nil
}

func dispatch(ctrl *tracker.Controller, doc *htmldom.Document, event replayEvent) error {
	switch event.Type {
	case "mousemove":
		ctrl.HandleMouseMove(event.X, event.Y)
	case "click":
		ctrl.HandleClick(event.X, event.Y, tracker.Modifiers{Ctrl: event.Ctrl, Meta: event.Meta, Shift: event.Shift})
	case "mousedown":
		ctrl.HandleMouseDown(event.X, event.Y)
	case "mouseup":
		ctrl.HandleMouseUp(event.X, event.Y)
	case "keydown":
		ctrl.HandleKeyDown(event.Key)
	case "scroll":
		ctrl.HandleScroll()
	case "focus":
		doc.SetFocusInTextInput(event.Focused)
	case "message":
		if event.Message == nil {
			return fmt.Errorf("message event without a message")
		}
		if !protocol.Known(event.Message.Type) {
			return fmt.Errorf("unknown message type %q", event.Message.Type)
		}
		return ctrl.HandleMessage(*event.Message)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	return nil
}
