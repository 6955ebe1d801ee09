package agent

import (
	"fmt"
	"time"

	"github.com/clawd-xsl/android-remote/internal/model"
)

// MaxSleep bounds a single sleep step.
const MaxSleep = 10 * time.Second

// Do runs steps in order. Unless StopOnError is false, the first failing
// step ends the batch. A step that runs but reports success=false counts
// as a failure.
func (a *Agent) Do(req model.DoRequest) model.DoResult {
	stopOnError := req.StopOnError == nil || *req.StopOnError
	result := model.DoResult{Steps: len(req.Steps), Results: make([]model.StepResult, 0, len(req.Steps))}

	for i, step := range req.Steps {
		n := i + 1
		var r model.StepResult
		var err error
		if len(step) != 1 {
			err = fmt.Errorf("expected exactly one action key, got %d", len(step))
		} else {
			for action, params := range step {
				r, err = a.executeStep(action, params)
			}
		}
		r.Step = n
		if err != nil {
			r.OK = false
			r.Error = err.Error()
			result.Results = append(result.Results, r)
			if result.Error == "" {
				result.Error = fmt.Sprintf("step %d: %s", n, err)
			}
			if stopOnError {
				break
			}
			continue
		}
		r.OK = true
		result.Completed++
		result.Results = append(result.Results, r)
	}

	result.OK = result.Error == ""
	a.logger.Info("batch finished", "steps", result.Steps, "completed", result.Completed, "ok", result.OK)
	return result
}

func (a *Agent) executeStep(action string, params map[string]any) (model.StepResult, error) {
	r := model.StepResult{Action: action}
	var ok bool
	var err error

	switch action {
	case "tap":
		req := model.TapRequest{
			X:      FloatParam(params, "x"),
			Y:      FloatParam(params, "y"),
			NodeID: StringPtrParam(params, "nodeId"),
			Text:   StringPtrParam(params, "text"),
		}
		if req.NodeID != nil {
			r.NodeID = *req.NodeID
		}
		if req.Text != nil {
			r.Text = *req.Text
		}
		ok, err = a.Tap(req)
	case "swipe":
		req := model.SwipeRequest{
			X1: FloatParam(params, "x1"),
			Y1: FloatParam(params, "y1"),
			X2: FloatParam(params, "x2"),
			Y2: FloatParam(params, "y2"),
		}
		req.DurationMs = Int64Param(params, "durationMs")
		ok, err = a.Swipe(req)
	case "input":
		req := model.InputRequest{Text: StringPtrParam(params, "text")}
		if req.Text != nil {
			r.Text = *req.Text
		}
		ok, err = a.Input(req)
	case "key":
		req := model.KeyRequest{KeyCode: StringPtrParam(params, "keyCode"), Key: StringPtrParam(params, "key")}
		if req.KeyCode != nil {
			r.Key = *req.KeyCode
		} else if req.Key != nil {
			r.Key = *req.Key
		}
		ok, err = a.Key(req)
	case "launch":
		ok, err = a.Launch(model.LaunchRequest{PackageName: StringPtrParam(params, "packageName")})
	case "notify":
		var id string
		id, err = a.Notify(model.NotificationRequest{
			Title: StringPtrParam(params, "title"),
			Body:  StringPtrParam(params, "body"),
		})
		ok = err == nil
		r.ID = id
	case "ui":
		var root *model.UiNode
		root, err = a.UI()
		if err == nil {
			if text := StringParam(params, "text", ""); text != "" {
				root = model.FilterByText(root, text)
			}
			if root != nil {
				r.Nodes = root.Count()
			}
			ok = true
		}
	case "sleep":
		ms := IntParam(params, "ms", 0)
		if ms <= 0 {
			return r, fmt.Errorf("ms must be > 0")
		}
		d := MaxSleep
		if int64(ms) < MaxSleep.Milliseconds() {
			d = time.Duration(ms) * time.Millisecond
		}
		<-a.clock.After(d)
		r.Elapsed = d.String()
		ok = true
	default:
		return r, fmt.Errorf("unknown step type %q (supported: tap, swipe, input, key, launch, notify, ui, sleep)", action)
	}

	if err != nil {
		return r, err
	}
	if !ok {
		return r, fmt.Errorf("%s reported success=false", action)
	}
	return r, nil
}
