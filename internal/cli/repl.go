package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/views"
)

const helpText = `Tasks:    tasks, tab <projectID|all>, back, add <title>, ai <free text>, done <id>,
          setstatus <id> <status>, subtasks <id>, check <taskID> <subtaskID>, deltask <id>
Projects: projects, addproject [title], delproject <id>, invite <id>, join <token>,
          members <id>, kick <projectID> <userID>, leave <id>, estimate
Clients:  clients, addclient [name], delclient <id>, avatar <clientID> <file>
Settings: theme [light|dark], lang <en|ru>, status add|rm <name>, statuses
Session:  reload, logout, deleteaccount, help, exit`

// runREPL reads commands from the app's input until EOF, "exit" or "quit".
// Handlers print their own errors, so the loop never stops on one.
func (a *App) runREPL(ctx context.Context) {
	for {
		if a.interactive {
			a.printf("tk %s> ", a.status())
		}
		line, err := a.reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		if !a.dispatch(ctx, line) {
			return
		}
	}
}

// dispatch runs one command line and reports whether the loop continues.
func (a *App) dispatch(ctx context.Context, line string) bool {
	cmd, rest := splitCommand(line)
	if cmd == "" {
		return true
	}
	args := strings.Fields(rest)

	switch cmd {
	case "help":
		a.println(helpText)

	case "tasks", "l":
		a.listTasks()
	case "tab":
		a.setTab(args)
	case "back":
		a.back()
	case "add":
		a.addTask(ctx, rest)
	case "ai":
		a.aiTask(ctx, rest)
	case "done":
		a.toggleTask(ctx, args)
	case "setstatus":
		a.setTaskStatus(ctx, args)
	case "subtasks":
		a.generateSubtasks(ctx, args)
	case "check":
		a.toggleSubtask(ctx, args)
	case "deltask":
		a.deleteTask(ctx, args)

	case "projects":
		a.listProjects()
	case "addproject":
		a.addProject(ctx, rest)
	case "delproject":
		a.deleteProject(ctx, args)
	case "invite":
		a.invite(args)
	case "join":
		a.join(ctx, args)
	case "members":
		a.listMembers(args)
	case "kick":
		a.kick(ctx, args)
	case "leave":
		a.leave(ctx, args)
	case "estimate":
		a.estimate(ctx)

	case "clients":
		a.listClients(ctx)
	case "addclient":
		a.addClient(ctx, rest)
	case "delclient":
		a.deleteClient(ctx, args)
	case "avatar":
		a.setAvatar(ctx, args)

	case "theme":
		a.theme(ctx, args)
	case "lang":
		a.lang(ctx, args)
	case "status":
		a.customStatus(ctx, args)
	case "statuses":
		a.listStatuses()

	case "reload":
		a.reload(ctx)
	case "logout":
		a.engine.Reset()
		a.tab = views.TabAll
		a.println("Logged out. Type 'reload' to sign back in.")
	case "deleteaccount":
		a.deleteAccount(ctx)

	case "exit", "quit":
		a.println("Bye!")
		return false

	default:
		a.println("Unknown command:", cmd)
	}
	return true
}

func splitCommand(line string) (cmd, rest string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

// status is shown in the prompt.
func (a *App) status() string {
	parts := []string{}
	if a.engine.Loading() {
		parts = append(parts, "loading")
	}
	if a.tab != views.TabAll {
		if p, ok := a.engine.Project(a.tab); ok {
			parts = append(parts, p.Title)
		}
	}
	if a.engine.Premium() {
		parts = append(parts, "premium")
	}
	if a.engine.Resolver().Guest() {
		parts = append(parts, "guest")
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}
