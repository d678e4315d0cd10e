package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/google/uuid"

	authDomain "github.com/voces/voces/internal/auth/domain"
	"github.com/voces/voces/internal/auth/http/dto"
	authUseCase "github.com/voces/voces/internal/auth/usecase"
)

// RunAuditLogs prints the most recent audit events attributed to userID, optionally
// restricted to one kind. limit follows the ledger's clamping rules.
func RunAuditLogs(
	ctx context.Context,
	ledger authUseCase.AuditLedger,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	kind string,
	limit int,
	format string,
) error {
	actorID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	var kindFilter *authDomain.EventKind
	if kind != "" {
		parsed, err := authDomain.ParseEventKind(kind)
		if err != nil {
			return err
		}
		kindFilter = &parsed
	}

	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	events, err := ledger.QueryByActor(ctx, actorID, kindFilter, limit)
	if err != nil {
		return fmt.Errorf("failed to query audit events: %w", err)
	}

	if format == "json" {
		if err := outputAuditLogsJSON(writer, events); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputAuditLogsText(writer, events)
	}

	logger.Info("audit events listed",
		slog.String("user_id", actorID.String()),
		slog.Int("count", len(events)),
	)

	return nil
}

func outputAuditLogsJSON(writer io.Writer, events []*authDomain.AuditEvent) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dto.MapAuditEventsToListResponse(events))
}

func outputAuditLogsText(writer io.Writer, events []*authDomain.AuditEvent) {
	if len(events) == 0 {
		_, _ = fmt.Fprintln(writer, "No audit events found.")
		return
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CREATED AT\tKIND\tSUCCESS\tIP ADDRESS\tDESCRIPTION")
	for _, event := range events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			event.CreatedAt.Format("2006-01-02 15:04:05"),
			event.Kind,
			event.Success,
			event.IPAddress,
			event.Description,
		)
	}
	_ = tw.Flush()
}
