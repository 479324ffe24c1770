// Package extract coerces free-form LLM output into task lists.
//
// Model output is untrusted: sometimes it is clean JSON, sometimes JSON
// wrapped in prose or a fenced code block, sometimes a truncated array.
// Parsing runs a fixed sequence of strategies from strictest to loosest and
// returns the first one that yields at least one usable task.
package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// ErrNoTasks is returned when no strategy recovered a usable task.
var ErrNoTasks = errors.New("no tasks found in model output")

var (
	fencedBlock = regexp.MustCompile("(?s)`{3}(?:json)?\\s*(.*?)`{3}")
	flatObject  = regexp.MustCompile(`(?s)\{[^{}]*\}`)
)

// Tasks parses raw model output into a task list.
//
// Strategies, in order:
//  1. the whole output as a JSON array (or a {"tasks": [...]} envelope),
//  2. each fenced code block,
//  3. the outermost [ ... ] slice,
//  4. per-object salvage of flat {...} objects anywhere in the text.
func Tasks(raw string) ([]domain.ExtractedTask, error) {
	for _, candidate := range candidates(raw) {
		if tasks := decodeTasks(candidate); len(tasks) > 0 {
			return tasks, nil
		}
	}
	if tasks := salvageObjects(raw); len(tasks) > 0 {
		return tasks, nil
	}
	return nil, ErrNoTasks
}

func candidates(raw string) []string {
	out := []string{strings.TrimSpace(raw)}
	for _, m := range fencedBlock.FindAllStringSubmatch(raw, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if slice, ok := bracketSlice(raw); ok {
		out = append(out, slice)
	}
	return out
}

// bracketSlice cuts from the first '[' to the last ']'.
func bracketSlice(raw string) (string, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// decodeTasks tries to unmarshal a candidate as a bare array or an envelope.
func decodeTasks(candidate string) []domain.ExtractedTask {
	if candidate == "" {
		return nil
	}

	var tasks []domain.ExtractedTask
	if err := json.Unmarshal([]byte(candidate), &tasks); err == nil {
		return normalize(tasks)
	}

	var envelope struct {
		Tasks []domain.ExtractedTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(candidate), &envelope); err == nil {
		return normalize(envelope.Tasks)
	}
	return nil
}

// salvageObjects recovers individual flat task objects from otherwise
// unparseable output, e.g. a truncated array.
func salvageObjects(raw string) []domain.ExtractedTask {
	var tasks []domain.ExtractedTask
	for _, m := range flatObject.FindAllString(raw, -1) {
		var task domain.ExtractedTask
		if err := json.Unmarshal([]byte(m), &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	return normalize(tasks)
}

// normalize trims fields, drops entries without a title and clears unknown
// priority values so downstream defaults apply.
func normalize(tasks []domain.ExtractedTask) []domain.ExtractedTask {
	out := make([]domain.ExtractedTask, 0, len(tasks))
	for _, task := range tasks {
		task.Title = strings.TrimSpace(task.Title)
		if task.Title == "" {
			continue
		}
		task.Explanation = strings.TrimSpace(task.Explanation)
		if task.PriorityLevel != "" && !domain.ValidPriority(task.PriorityLevel) {
			task.PriorityLevel = ""
		}
		tags := task.Tags[:0]
		for _, tag := range task.Tags {
			if t := strings.TrimSpace(tag); t != "" {
				tags = append(tags, t)
			}
		}
		task.Tags = tags
		out = append(out, task)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Dedupe removes tasks whose titles collapse to the same key. First
// occurrence wins; used when the refinement pass is unavailable.
func Dedupe(tasks []domain.ExtractedTask) []domain.ExtractedTask {
	seen := make(map[string]struct{}, len(tasks))
	out := make([]domain.ExtractedTask, 0, len(tasks))
	for _, task := range tasks {
		key := strings.ToLower(strings.Join(strings.Fields(task.Title), " "))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, task)
	}
	return out
}
