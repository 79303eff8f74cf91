package orgservice

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/editor"
	"github.com/starford/raido/internal/org"
)

// BatchCommand is one operation of a batch request. Fields beyond Op,
// Path, and Target are op-specific.
type BatchCommand struct {
	Op     string `json:"op"`
	Path   string `json:"path"`
	Target string `json:"target,omitempty"`

	State    string   `json:"state,omitempty"`     // todo, add-headline
	Time     string   `json:"timestamp,omitempty"` // schedule, deadline
	Tag      string   `json:"tag,omitempty"`       // add-tag, remove-tag
	Priority string   `json:"priority,omitempty"`  // priority, add-headline
	Key      string   `json:"key,omitempty"`       // property-set, property-remove
	Value    string   `json:"value,omitempty"`     // property-set
	Title    string   `json:"title,omitempty"`     // add-headline
	Tags     []string `json:"tags,omitempty"`      // add-headline
	DestPath string   `json:"dest_path,omitempty"` // refile
	Dest     string   `json:"dest,omitempty"`      // refile
}

// BatchItemResult reports the outcome of one batch command.
type BatchItemResult struct {
	Op   string `json:"op"`
	Path string `json:"path"`
	ID   string `json:"id,omitempty"`
}

// BatchResult reports a whole batch: the per-command outcomes plus the
// final checksum of every touched file.
type BatchResult struct {
	Items     []BatchItemResult `json:"items"`
	Checksums map[string]string `json:"checksums"`
}

// batchState holds the in-flight content buffers of a batch. Nothing is
// written until every command has succeeded, so a failed batch leaves the
// vault untouched.
type batchState struct {
	svc     *Service
	buffers map[string]string
	order   []string
}

func (b *batchState) load(path string) (string, org.Config, error) {
	if content, ok := b.buffers[path]; ok {
		doc := org.Parse(content)
		return content, b.svc.cfg.ForDocument(doc.Keywords), nil
	}
	content, cfg, err := b.svc.readDoc(path)
	if err != nil {
		return "", org.Config{}, err
	}
	b.put(path, content)
	return content, cfg, nil
}

func (b *batchState) put(path, content string) {
	if _, ok := b.buffers[path]; !ok {
		b.order = append(b.order, path)
	}
	b.buffers[path] = content
}

// Batch decodes a JSON array of commands from r and applies them in order
// against in-memory buffers. All files are written only after the whole
// batch succeeds; any failure aborts without touching the vault.
func (s *Service) Batch(_ context.Context, r io.Reader, now time.Time) (*BatchResult, error) {
	var cmds []BatchCommand
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cmds); err != nil {
		return nil, apperr.New(apperr.KindParse, "invalid batch JSON").WithDetail(err.Error())
	}

	b := &batchState{svc: s, buffers: make(map[string]string)}
	result := &BatchResult{Checksums: make(map[string]string)}

	for i, cmd := range cmds {
		item, err := b.apply(cmd, now)
		if err != nil {
			return nil, apperr.Newf(apperr.KindOf(err), "batch command %d (%s): %v", i, cmd.Op, err)
		}
		result.Items = append(result.Items, item)
	}

	for _, path := range b.order {
		data := []byte(b.buffers[path])
		if err := s.store.Write(path, data); err != nil {
			return nil, err
		}
		if err := s.IndexFile(path, data); err != nil {
			return nil, err
		}
		result.Checksums[path] = checksum.Sum(data)
	}
	return result, nil
}

func (b *batchState) apply(cmd BatchCommand, now time.Time) (BatchItemResult, error) {
	item := BatchItemResult{Op: cmd.Op, Path: cmd.Path}
	if cmd.Path == "" {
		return item, apperr.New(apperr.KindInvalidArgs, "missing path")
	}

	// add-headline may start a new file; everything else needs an
	// existing buffer and a resolved target.
	if cmd.Op == "add-headline" {
		content, cfg, err := b.load(cmd.Path)
		if apperr.Is(err, apperr.KindFileNotFound) {
			content, cfg, err = "", b.svc.cfg, nil
		}
		if err != nil {
			return item, err
		}
		parentPos := -1
		if cmd.Target != "" {
			parentPos, err = editor.ResolvePosition(cfg, content, cmd.Target)
			if err != nil {
				return item, err
			}
		}
		if cmd.State != "" && !cfg.IsKeyword(cmd.State) {
			return item, apperr.Newf(apperr.KindInvalidArgs, "unknown todo keyword %q", cmd.State)
		}
		var prio byte
		if len(cmd.Priority) > 1 {
			return item, apperr.Newf(apperr.KindInvalidArgs, "priority must be a single character, got %q", cmd.Priority)
		}
		if cmd.Priority != "" {
			prio = cmd.Priority[0]
		}
		out, err := editor.AddHeadline(cfg, content, parentPos, editor.NewHeadline{
			Title:    cmd.Title,
			Keyword:  cmd.State,
			Priority: prio,
			Tags:     cmd.Tags,
		})
		if err != nil {
			return item, err
		}
		b.put(cmd.Path, out)
		return item, nil
	}

	content, cfg, err := b.load(cmd.Path)
	if err != nil {
		return item, err
	}
	pos, err := editor.ResolvePosition(cfg, content, cmd.Target)
	if err != nil {
		return item, err
	}

	var out string
	switch cmd.Op {
	case "todo":
		if cmd.State != "" && !cfg.IsKeyword(cmd.State) {
			return item, apperr.Newf(apperr.KindInvalidArgs, "unknown todo keyword %q", cmd.State)
		}
		out, err = editor.SetTodoState(cfg, content, pos, cmd.State, now)

	case "schedule", "deadline":
		var ts *org.Timestamp
		ts, err = coerceOptionalTimestamp(cmd.Time)
		if err != nil {
			return item, err
		}
		if cmd.Op == "schedule" {
			out, err = editor.SetScheduled(cfg, content, pos, ts, now)
		} else {
			out, err = editor.SetDeadline(cfg, content, pos, ts, now)
		}

	case "add-tag":
		out, err = editor.AddTag(cfg, content, pos, cmd.Tag)

	case "remove-tag":
		out, err = editor.RemoveTag(cfg, content, pos, cmd.Tag)

	case "priority":
		var prio byte
		if len(cmd.Priority) > 1 {
			return item, apperr.Newf(apperr.KindInvalidArgs, "priority must be a single character, got %q", cmd.Priority)
		}
		if cmd.Priority != "" {
			prio = cmd.Priority[0]
		}
		out, err = editor.SetPriority(cfg, content, pos, prio)

	case "property-set":
		out, err = editor.SetProperty(content, pos, cmd.Key, cmd.Value)

	case "property-remove":
		out, err = editor.RemoveProperty(content, pos, cmd.Key)

	case "clock-in":
		out, err = editor.ClockIn(cfg, content, pos, now)

	case "clock-out":
		out, err = editor.ClockOut(cfg, content, pos, now)

	case "ensure-id":
		out, item.ID, err = editor.EnsureID(content, pos)

	case "refile":
		out, err = b.refile(cmd, cfg, content, pos, now)

	default:
		return item, apperr.Newf(apperr.KindInvalidArgs, "unknown op %q", cmd.Op)
	}
	if err != nil {
		return item, err
	}
	b.put(cmd.Path, out)
	return item, nil
}

// refile handles the in-batch refile, including the cross-file case where
// the destination buffer is rewritten as a side effect.
func (b *batchState) refile(cmd BatchCommand, cfg org.Config, content string, srcPos int, now time.Time) (string, error) {
	if cmd.DestPath == "" || cmd.DestPath == cmd.Path {
		dstPos, err := editor.ResolvePosition(cfg, content, cmd.Dest)
		if err != nil {
			return "", err
		}
		return editor.Refile(cfg, content, srcPos, dstPos, now)
	}

	dstContent, dstCfg, err := b.load(cmd.DestPath)
	if err != nil {
		return "", err
	}
	dstPos, err := editor.ResolvePosition(dstCfg, dstContent, cmd.Dest)
	if err != nil {
		return "", err
	}
	newSrc, newDst, err := editor.RefileBetween(dstCfg, content, srcPos, dstContent, dstPos, now)
	if err != nil {
		return "", err
	}
	b.put(cmd.DestPath, newDst)
	return newSrc, nil
}
