package mcpapi

import (
	"context"

	"github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// registerBoardTools registers read-only board tools.
func registerBoardTools(srv *mcpserver.MCPServer, board common.BoardReader) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.get_board",
			mcp.WithDescription("Return every column with its tasks in display order, plus the active drag."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			state, err := board.BoardState(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("get_board", state)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.list_changes",
			mcp.WithDescription("List recent applied board mutations, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum events to return")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			events, err := board.ListChanges(ctx, req.GetInt("limit", 0))
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("list_changes", map[string]any{
				"events": events,
			})
		},
	)
}

// registerColumnTools registers column mutation tools.
func registerColumnTools(srv *mcpserver.MCPServer, columns common.ColumnService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.add_column",
			mcp.WithDescription("Append a column. Without a title the default numbered title is used."),
			mcp.WithString("title", mcp.Description("Optional column title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			in := common.AddColumnRequest{}
			if title, ok := req.GetArguments()["title"].(string); ok {
				in.Title = &title
			}
			result, err := columns.AddColumn(ctx, in)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_column", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.rename_column",
			mcp.WithDescription("Replace one column title."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Column id")),
			mcp.WithString("title", mcp.Required(), mcp.Description("New title; may be empty")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := columns.RenameColumn(ctx, common.RenameColumnRequest{ID: id, Title: title})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("rename_column", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.remove_column",
			mcp.WithDescription("Delete one column together with all of its tasks."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Column id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := columns.RemoveColumn(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("remove_column", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.move_column",
			mcp.WithDescription("Move one column to the position currently held by another column."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Column to move")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Column whose position is taken")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			to, err := req.RequireString("to")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := columns.MoveColumn(ctx, common.MoveColumnRequest{ID: id, To: to})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_column", result)
		},
	)
}

// registerTaskTools registers task mutation tools.
func registerTaskTools(srv *mcpserver.MCPServer, tasks common.TaskService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.add_task",
			mcp.WithDescription("Append a task to one column. Unknown columns are ignored."),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Owning column id")),
			mcp.WithString("content", mcp.Description("Optional task content")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in := common.AddTaskRequest{ColumnID: columnID}
			if content, ok := req.GetArguments()["content"].(string); ok {
				in.Content = &content
			}
			result, err := tasks.AddTask(ctx, in)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("add_task", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.update_task",
			mcp.WithDescription("Replace one task's content."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New content; may be empty")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			content, err := req.RequireString("content")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := tasks.UpdateTask(ctx, common.UpdateTaskRequest{ID: id, Content: content})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("update_task", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.remove_task",
			mcp.WithDescription("Delete one task."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := tasks.RemoveTask(ctx, id)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("remove_task", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.move_task",
			mcp.WithDescription("Move a task onto another task's position, or reassign it to a column without repositioning."),
			mcp.WithString("id", mcp.Required(), mcp.Description("Task to move")),
			mcp.WithString("over", mcp.Required(), mcp.Description("Target task or column id")),
			mcp.WithBoolean("over_is_column", mcp.Description("Whether over names a column")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			id, err := req.RequireString("id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			over, err := req.RequireString("over")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := tasks.MoveTask(ctx, common.MoveTaskRequest{
				ID:         id,
				Over:       over,
				OverColumn: req.GetBool("over_is_column", false),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("move_task", result)
		},
	)
}

// registerDragTools registers the drag gesture tool.
func registerDragTools(srv *mcpserver.MCPServer, drag common.DragService) {
	srv.AddTool(
		mcp.NewTool(
			"kanboard.drag",
			mcp.WithDescription("Apply one drag gesture event: start a drag, move over a target, drop, or cancel."),
			mcp.WithString("action", mcp.Required(), mcp.Description("Gesture event"), mcp.Enum(common.SupportedDragActions()...)),
			mcp.WithString("kind", mcp.Description("Entity kind of id"), mcp.Enum(common.TargetKindColumn, common.TargetKindTask)),
			mcp.WithString("id", mcp.Description("Dragged entity for start; target entity otherwise")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			action, err := req.RequireString("action")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			result, err := drag.Drag(ctx, common.DragRequest{
				Action: action,
				Kind:   req.GetString("kind", ""),
				ID:     req.GetString("id", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("drag", result)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"kanboard.drag_state",
			mcp.WithDescription("Return the active drag gesture and its preview entity."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			state, err := drag.DragState(ctx)
			if err != nil {
				return toolResultFromError(err), nil
			}
			return jsonResult("drag_state", state)
		},
	)
}
