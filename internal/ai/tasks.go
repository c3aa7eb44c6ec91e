package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/models"
)

// ParseTaskRequest is a free-text command with the context the model needs.
type ParseTaskRequest struct {
	Text        string   `json:"text"`
	Clients     []string `json:"clients"`
	CurrentDate string   `json:"currentDate"`
}

// ParsedTask is a task extracted from free text.
type ParsedTask struct {
	Title    string
	Client   *string
	Deadline *string
	Priority models.Priority
	Subtasks []string
}

type parsedTaskBody struct {
	Title    string   `json:"title"`
	Client   *string  `json:"client"`
	Deadline *string  `json:"deadline"`
	Priority string   `json:"priority"`
	Subtasks []string `json:"subtasks"`
}

// Draft converts the parsed task into a task draft in projectID.
func (p ParsedTask) Draft(projectID *string) models.TaskDraft {
	subs := make([]models.Subtask, 0, len(p.Subtasks))
	for _, s := range p.Subtasks {
		subs = append(subs, models.Subtask{Title: s})
	}
	return models.TaskDraft{
		Title:     p.Title,
		Subtasks:  subs,
		Status:    models.StatusInProgress,
		Priority:  p.Priority,
		Deadline:  p.Deadline,
		Client:    p.Client,
		ProjectID: projectID,
	}
}

// ParseTask turns a free-text command into a task. A response without a
// title is malformed; an unparseable deadline is dropped.
func (c *Client) ParseTask(ctx context.Context, req ParseTaskRequest) (ParsedTask, error) {
	if req.Clients == nil {
		req.Clients = []string{}
	}
	if req.CurrentDate == "" {
		req.CurrentDate = time.Now().Format(common.DateLayout)
	}

	data, err := c.post(ctx, "/parse-task", req)
	if err != nil {
		return ParsedTask{}, err
	}

	var body parsedTaskBody
	if err := decode(data, &body); err != nil {
		return ParsedTask{}, err
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return ParsedTask{}, fmt.Errorf("%w: missing title", ErrMalformedResponse)
	}

	out := ParsedTask{
		Title:    title,
		Client:   nonEmpty(body.Client),
		Priority: models.ParsePriority(body.Priority),
		Subtasks: cleanStrings(body.Subtasks),
	}
	if d := nonEmpty(body.Deadline); d != nil {
		if _, err := time.Parse(common.DateLayout, *d); err == nil {
			out.Deadline = d
		}
	}
	return out, nil
}

type subtasksRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

type subtasksBody struct {
	Subtasks []string `json:"subtasks"`
	Error    string   `json:"error"`
}

// GenerateSubtasks asks for a checklist for a task title. The service may
// answer with a bare array, {"subtasks": [...]} or {"error": "..."}.
func (c *Client) GenerateSubtasks(ctx context.Context, title, language string) ([]string, error) {
	data, err := c.post(ctx, "/generate-subtasks", subtasksRequest{Title: title, Language: language})
	if err != nil {
		return nil, err
	}

	raw := StripFences(string(data))
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return cleanStrings(list), nil
	}

	var body subtasksBody
	if err := decode(data, &body); err != nil {
		return nil, err
	}
	if body.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrService, body.Error)
	}
	if body.Subtasks == nil {
		return nil, fmt.Errorf("%w: missing subtasks", ErrMalformedResponse)
	}
	return cleanStrings(body.Subtasks), nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
