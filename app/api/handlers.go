package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rivalmap/rivalmap/app/analysis"
	"github.com/rivalmap/rivalmap/app/auth"
	"github.com/rivalmap/rivalmap/app/cfg"
	"github.com/rivalmap/rivalmap/app/database"
	"github.com/rivalmap/rivalmap/app/mcp"
	"github.com/rivalmap/rivalmap/app/render"
	"github.com/rivalmap/rivalmap/app/webhook"
)

const (
	listLimit    = 10
	dumpPageSize = 100
)

func NewHandler(repo database.AnalysisRepository, service SubmitterInterface,
	validator HostnameValidator, verifier *webhook.Verifier,
	mcpServer *mcp.Server, authHandler *auth.Handler) *Handler {
	return &Handler{
		repo:      repo,
		service:   service,
		validator: validator,
		verifier:  verifier,
		mcpServer: mcpServer,
		auth:      authHandler,
	}
}

func (h *Handler) Index(c *gin.Context) {
	popular, err := h.repo.ListPopular(listLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_popular", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	recent, err := h.repo.ListRecent(listLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_recent", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"Title":   "Competitive intelligence",
		"User":    auth.CurrentUser(c),
		"Popular": popular,
		"Recent":  recent,
	})
}

func (h *Handler) NewAnalysis(c *gin.Context) {
	user := auth.CurrentUser(c)

	company := c.Query("company")
	if company == "" {
		h.messagePage(c, http.StatusBadRequest, "Missing company",
			"Pass a company domain, e.g. /new?company=acme.com.", true, "/", "Back to home")
		return
	}

	hostname, err := analysis.NormalizeHostname(company)
	if err != nil {
		h.messagePage(c, http.StatusBadRequest, "Invalid domain",
			company+" does not look like a valid domain name.", true, "/", "Back to home")
		return
	}

	if !h.validator.IsValidHostname(c.Request.Context(), hostname) {
		h.messagePage(c, http.StatusBadRequest, "Unknown domain",
			hostname+" does not resolve in DNS. Check the spelling and try again.", true, "/", "Back to home")
		return
	}

	existing, err := h.repo.Get(hostname)
	if err != nil {
		slog.Error("Database error", "operation", "get_analysis", "hostname", hostname, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if existing != nil {
		refreshable := existing.Failed() || analysis.IsStale(existing)
		if !refreshable || !user.Authenticated {
			c.Redirect(http.StatusFound, "/analysis/"+hostname)
			return
		}
		// Refreshable; deleted below, after the auth and quota gates.
	}

	if !user.Authenticated {
		h.messagePage(c, http.StatusUnauthorized, "Log in to analyze",
			"Requesting a new analysis requires an account so we can attribute and limit research runs.",
			false, "/auth/login", "Log in")
		return
	}

	if !cfg.Get().IsAdmin(user.Username) {
		count, err := h.repo.CountByUsername(user.Username)
		if err != nil {
			slog.Error("Database error", "operation", "count_by_username", "username", user.Username, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		if count >= analysis.MaxAnalysesPerUser {
			h.messagePage(c, http.StatusTooManyRequests, "Limit reached",
				"You already have "+strconv.Itoa(analysis.MaxAnalysesPerUser)+" analyses. Each one is expensive to produce, so the quota is fixed.",
				true, "/", "Back to home")
			return
		}
	}

	if existing != nil {
		if err := h.repo.Delete(hostname); err != nil {
			slog.Error("Database error", "operation", "delete_analysis", "hostname", hostname, "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
	}

	if err := h.service.Submit(c.Request.Context(), hostname, true, user); err != nil {
		slog.Error("Research submission failed", "hostname", hostname, "error", err)
		h.messagePage(c, http.StatusInternalServerError, "Submission failed",
			"The research service could not accept the request. Try again in a moment.",
			true, "/new?company="+hostname, "Retry")
		return
	}

	c.Redirect(http.StatusFound, "/analysis/"+hostname)
}

func (h *Handler) GetAnalysis(c *gin.Context) {
	hostname := c.Param("hostname")

	a, err := h.repo.Get(hostname)
	if err != nil {
		slog.Error("Database error", "operation", "get_analysis", "hostname", hostname, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if a == nil {
		h.messagePage(c, http.StatusNotFound, "No analysis yet",
			"Nobody has analyzed "+hostname+" so far.", false,
			"/new?company="+hostname, "Analyze "+hostname)
		return
	}

	if a.Failed() {
		h.messagePage(c, http.StatusOK, a.CompanyName,
			"Analysis failed: "+*a.Error, true,
			"/new?company="+hostname, "Try again")
		return
	}

	if a.Status == database.StatusPending {
		c.HTML(http.StatusOK, "pending.tmpl", gin.H{
			"Title":    a.CompanyName,
			"User":     auth.CurrentUser(c),
			"Analysis": a,
		})
		return
	}

	if a.Result == nil {
		slog.Error("Done analysis has no stored result", "hostname", hostname)
		c.Status(http.StatusInternalServerError)
		return
	}

	report, err := render.ParseReport(*a.Result)
	if err != nil {
		slog.Error("Stored result is unreadable", "hostname", hostname, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if err := h.repo.IncrementVisits(hostname); err != nil {
		slog.Error("Database error", "operation", "increment_visits", "hostname", hostname, "error", err)
	} else {
		a.Visits++
	}

	c.HTML(http.StatusOK, "detail.tmpl", gin.H{
		"Title":    a.CompanyName,
		"User":     auth.CurrentUser(c),
		"Analysis": a,
		"Report":   report,
	})
}

func (h *Handler) GetMarkdown(c *gin.Context) {
	hostname := c.Param("hostname")

	builder := NewReportBuilder(h.repo)
	md, err := builder.MarkdownReport(c.Request.Context(), hostname)
	if errors.Is(err, mcp.ErrReportNotFound) {
		c.String(http.StatusNotFound, "No analysis for %s. Request one at %s/new?company=%s\n",
			hostname, cfg.Get().BaseUrl, hostname)
		return
	}
	if err != nil {
		slog.Error("Report rendering failed", "hostname", hostname, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.String(http.StatusOK, md)
}

func (h *Handler) GetOGCard(c *gin.Context) {
	hostname := c.Param("hostname")

	svg := render.PlaceholderCard(hostname)

	a, err := h.repo.Get(hostname)
	if err != nil {
		slog.Error("Database error", "operation", "get_analysis", "hostname", hostname, "error", err)
	} else if a != nil && a.Succeeded() && a.Result != nil {
		if report, perr := render.ParseReport(*a.Result); perr == nil {
			names := make([]string, 0, len(report.Competitors))
			for _, comp := range report.Competitors {
				if comp.Hostname != "" {
					names = append(names, comp.Hostname)
				}
			}
			svg = render.OGCard(hostname, report.CompanyName, names)
		}
	}

	c.Header("Content-Type", "image/svg+xml")
	c.Header("Cache-Control", "public, max-age=3600")
	c.String(http.StatusOK, svg)
}

func (h *Handler) Search(c *gin.Context) {
	query := c.Param("query")

	results, err := h.repo.Search(query)
	if err != nil {
		slog.Error("Database error", "operation", "search", "query", query, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "search.tmpl", gin.H{
		"Title":   "Search: " + query,
		"User":    auth.CurrentUser(c),
		"Query":   query,
		"Results": results,
	})
}

func (h *Handler) Admin(c *gin.Context) {
	user := auth.CurrentUser(c)
	if !user.Authenticated || !cfg.Get().IsAdmin(user.Username) {
		c.Status(http.StatusForbidden)
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	records, err := h.repo.GetAll((page-1)*dumpPageSize, dumpPageSize)
	if err != nil {
		slog.Error("Database error", "operation", "get_all", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	total, err := h.repo.Count()
	if err != nil {
		slog.Error("Database error", "operation", "count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.HTML(http.StatusOK, "admin.tmpl", gin.H{
		"Title":    "Records",
		"User":     user,
		"Records":  records,
		"Total":    total,
		"Page":     page,
		"NextPage": page + 1,
		"HasNext":  page*dumpPageSize < total,
	})
}

// Dump streams stored analyses as flattened JSON, one page at a time. The
// parsed result payload is merged into each record so consumers do not have
// to decode the blob themselves.
func (h *Handler) Dump(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	records, err := h.repo.GetAll((page-1)*dumpPageSize, dumpPageSize)
	if err != nil {
		slog.Error("Database error", "operation", "get_all", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	total, err := h.repo.Count()
	if err != nil {
		slog.Error("Database error", "operation", "count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	flattened := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		flattened = append(flattened, flattenRecord(rec))
	}

	c.JSON(http.StatusOK, gin.H{
		"page":    page,
		"total":   total,
		"records": flattened,
	})
}

func flattenRecord(a database.Analysis) map[string]interface{} {
	out := map[string]interface{}{
		"hostname":       a.Hostname,
		"company_domain": a.CompanyDomain,
		"company_name":   a.CompanyName,
		"status":         a.Status,
		"username":       a.Username,
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
		"visits":         a.Visits,
	}
	if a.Error != nil {
		out["error"] = *a.Error
	}
	if a.Result != nil {
		var content map[string]interface{}
		if err := json.Unmarshal([]byte(*a.Result), &content); err == nil {
			for k, v := range content {
				if _, taken := out[k]; !taken {
					out[k] = v
				}
			}
		}
	}
	return out
}

func (h *Handler) MCP(c *gin.Context) {
	var req mcp.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, &mcp.Response{
			JSONRPC: "2.0",
			Error:   &mcp.ErrorObject{Code: mcp.ParseError, Message: "invalid JSON"},
		})
		return
	}

	resp := h.mcpServer.HandleRequest(c.Request.Context(), &req)
	if resp == nil {
		// Notification, nothing to send back
		c.Status(http.StatusAccepted)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   cfg.Get().Version,
	}

	count, err := h.repo.Count()
	if err != nil {
		health["status"] = "degraded"
		health["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	health["status"] = "ok"
	health["analyses"] = count
	c.JSON(http.StatusOK, health)
}

func (h *Handler) messagePage(c *gin.Context, status int, heading, message string,
	isError bool, actionURL, actionLabel string) {
	c.HTML(status, "message.tmpl", gin.H{
		"Title":       heading,
		"User":        auth.CurrentUser(c),
		"Heading":     heading,
		"Message":     message,
		"IsError":     isError,
		"ActionURL":   actionURL,
		"ActionLabel": actionLabel,
	})
}
