package api

import (
	"context"

	"github.com/rivalmap/rivalmap/app/analysis"
	"github.com/rivalmap/rivalmap/app/auth"
	"github.com/rivalmap/rivalmap/app/database"
	"github.com/rivalmap/rivalmap/app/mcp"
	"github.com/rivalmap/rivalmap/app/research"
	"github.com/rivalmap/rivalmap/app/webhook"
)

type SubmitterInterface interface {
	Submit(ctx context.Context, hostname string, deep bool, user auth.User) error
	HandleCompletion(ctx context.Context, ev *research.Event) error
}

var _ SubmitterInterface = (*analysis.Service)(nil)

type HostnameValidator interface {
	IsValidHostname(ctx context.Context, hostname string) bool
}

var _ HostnameValidator = (*analysis.Validator)(nil)

type Handler struct {
	repo      database.AnalysisRepository
	service   SubmitterInterface
	validator HostnameValidator
	verifier  *webhook.Verifier
	mcpServer *mcp.Server
	auth      *auth.Handler
}
