// Package web is the server rendered front end: the public report listing,
// Google sign-in and the admin screens that call the report API.
package web

import (
	"context"
	"errors"
	"net/http"

	"foodreport/internal/apiclient"
	"foodreport/internal/domain/report"
	"foodreport/internal/googleauth"
	"foodreport/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReportAPI is the subset of the API client the screens use.
type ReportAPI interface {
	Login(ctx context.Context, email string) (string, error)
	GetReports(ctx context.Context) ([]report.Report, error)
	GetReportByID(ctx context.Context, id string) (report.Report, error)
	CreateReport(ctx context.Context, token string, f apiclient.ReportForm) (report.Report, error)
	UpdateReport(ctx context.Context, token string, f apiclient.ReportForm) (report.Report, error)
	DeleteReport(ctx context.Context, token, id string) error
}

type OAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (googleauth.Profile, error)
}

const (
	sessionKey = "session"

	msgAPIUnavailable = "サーバーに接続できませんでした。"
	msgLoginFailed    = "ログインに失敗しました。"
)

var notices = map[string]string{
	"created": "レポートを登録しました",
	"updated": "レポートを更新しました",
	"deleted": "レポートを削除しました",
}

type Handler struct {
	api      ReportAPI
	sessions *session.Manager
	oauth    OAuth
	log      logrus.FieldLogger
}

func NewHandler(api ReportAPI, sessions *session.Manager, oauth OAuth, log logrus.FieldLogger) *Handler {
	return &Handler{api: api, sessions: sessions, oauth: oauth, log: log}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Index)
	r.GET("/login", h.Login)
	r.POST("/auth/google", h.StartGoogle)
	r.GET("/auth/google", redirectTo("/"))
	r.GET("/auth/google/callback", h.GoogleCallback)
	r.GET("/success", h.requireSession("/login"), h.Success)
	r.POST("/logout", h.Logout)
	r.GET("/logout", redirectTo("/"))

	admin := r.Group("/admin", h.requireSession("/"))
	admin.GET("", redirectTo("/admin/top"))
	admin.GET("/top", h.AdminTop)
	admin.POST("/top", h.DeleteReport)
	admin.GET("/add-report", h.AddReportForm)
	admin.POST("/add-report", h.AddReport)
	admin.GET("/edit-report/:reportId", h.EditReportForm)
	admin.POST("/edit-report/:reportId", h.EditReport)
}

func redirectTo(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, path)
	}
}

func (h *Handler) requireSession(fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := h.sessions.Load(c.Request)
		if err != nil {
			c.Redirect(http.StatusFound, fallback)
			c.Abort()
			return
		}
		c.Set(sessionKey, s)
		c.Next()
	}
}

func currentSession(c *gin.Context) session.Session {
	s, _ := c.Get(sessionKey)
	sess, _ := s.(session.Session)
	return sess
}

// Index is the public listing, newest first, twelve per page.
func (h *Handler) Index(c *gin.Context) {
	_, noSession := h.sessions.Load(c.Request)
	data := gin.H{"Title": "料理レポート一覧", "SignedIn": noSession == nil}

	reports, err := h.api.GetReports(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("list reports")
		data["Error"] = h.apiMessage(err)
		c.HTML(http.StatusBadGateway, "index", data)
		return
	}

	items, pager := paginate(reports, parsePage(c.Query("page")), reportsPerPage)
	data["Reports"] = toViews(items)
	data["Pager"] = pager
	c.HTML(http.StatusOK, "index", data)
}

func (h *Handler) Login(c *gin.Context) {
	if _, err := h.sessions.Load(c.Request); err == nil {
		c.Redirect(http.StatusFound, "/success")
		return
	}
	data := gin.H{"Title": "ログイン"}
	if c.Query("error") != "" {
		data["Error"] = msgLoginFailed
	}
	c.HTML(http.StatusOK, "login", data)
}

func (h *Handler) StartGoogle(c *gin.Context) {
	state := h.sessions.NewState(c.Writer)
	c.Redirect(http.StatusSeeOther, h.oauth.AuthCodeURL(state))
}

// GoogleCallback finishes the OAuth flow, trades the verified email for an
// API token and stores both in the session cookie.
func (h *Handler) GoogleCallback(c *gin.Context) {
	fail := func(err error, msg string) {
		h.log.WithError(err).Warn(msg)
		c.Redirect(http.StatusFound, "/login?error=auth")
	}

	if !h.sessions.CheckState(c.Writer, c.Request, c.Query("state")) {
		fail(errors.New("state mismatch"), "google callback rejected")
		return
	}
	if e := c.Query("error"); e != "" {
		fail(errors.New(e), "google sign-in denied")
		return
	}

	ctx := c.Request.Context()
	profile, err := h.oauth.Exchange(ctx, c.Query("code"))
	if err != nil {
		fail(err, "google exchange failed")
		return
	}
	token, err := h.api.Login(ctx, profile.Email)
	if err != nil {
		fail(err, "api login failed")
		return
	}
	if err := h.sessions.Save(c.Writer, session.Session{Email: profile.Email, APIToken: token}); err != nil {
		fail(err, "save session")
		return
	}

	h.log.WithField("email", profile.Email).Info("signed in")
	c.Redirect(http.StatusFound, "/success")
}

func (h *Handler) Success(c *gin.Context) {
	c.HTML(http.StatusOK, "success", gin.H{
		"Title": "ログイン成功",
		"Email": currentSession(c).Email,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Clear(c.Writer)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) AdminTop(c *gin.Context) {
	h.renderAdminTop(c, http.StatusOK, notices[c.Query("notice")], "")
}

func (h *Handler) renderAdminTop(c *gin.Context, status int, notice, errMsg string) {
	data := gin.H{"Title": "管理画面", "Notice": notice, "Error": errMsg}
	reports, err := h.api.GetReports(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Warn("list reports")
		data["Error"] = h.apiMessage(err)
		status = http.StatusBadGateway
	}
	data["Reports"] = toViews(reports)
	c.HTML(status, "admin_top", data)
}

// DeleteReport handles the delete buttons on /admin/top.
func (h *Handler) DeleteReport(c *gin.Context) {
	id := c.PostForm("reportId")
	err := h.api.DeleteReport(c.Request.Context(), currentSession(c).APIToken, id)
	if err != nil {
		if h.expired(c, err) {
			return
		}
		h.renderAdminTop(c, statusOf(err), "", h.apiMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/top?notice=deleted")
}

func (h *Handler) AddReportForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "add", "", newReportForm(), nil, "")
}

func (h *Handler) AddReport(c *gin.Context) {
	form, errs := readReportForm(c)
	img, imgErr := readImage(c)
	if imgErr == "" && img == nil {
		imgErr = msgImageRequired
	}
	if imgErr != "" {
		errs["image"] = imgErr
	}
	if len(errs) > 0 {
		h.renderForm(c, http.StatusBadRequest, "add", "", form, errs, "")
		return
	}

	_, err := h.api.CreateReport(c.Request.Context(), currentSession(c).APIToken, form.toAPI("", img))
	if err != nil {
		if h.expired(c, err) {
			return
		}
		h.renderForm(c, statusOf(err), "add", "", form, nil, h.apiMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/top?notice=created")
}

func (h *Handler) EditReportForm(c *gin.Context) {
	id := c.Param("reportId")
	rep, err := h.api.GetReportByID(c.Request.Context(), id)
	if err != nil {
		h.renderForm(c, statusOf(err), "edit", id, reportForm{}, nil, h.apiMessage(err))
		return
	}
	h.renderForm(c, http.StatusOK, "edit", id, formFromReport(rep), nil, "")
}

// EditReport updates the report; leaving the file input empty keeps the
// current photo.
func (h *Handler) EditReport(c *gin.Context) {
	id := c.Param("reportId")
	form, errs := readReportForm(c)
	img, imgErr := readImage(c)
	if imgErr != "" {
		errs["image"] = imgErr
	}
	if len(errs) > 0 {
		h.renderForm(c, http.StatusBadRequest, "edit", id, form, errs, "")
		return
	}

	_, err := h.api.UpdateReport(c.Request.Context(), currentSession(c).APIToken, form.toAPI(id, img))
	if err != nil {
		if h.expired(c, err) {
			return
		}
		h.renderForm(c, statusOf(err), "edit", id, form, nil, h.apiMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin/top?notice=updated")
}

func (h *Handler) renderForm(c *gin.Context, status int, mode, id string, form reportForm, errs map[string]string, errMsg string) {
	title := "新しい料理レポートを登録"
	action := "/admin/add-report"
	if mode == "edit" {
		title = "料理レポートを編集"
		action = "/admin/edit-report/" + id
	}
	c.HTML(status, "report_form", gin.H{
		"Title":  title,
		"Mode":   mode,
		"Action": action,
		"Form":   form,
		"Errors": errs,
		"Error":  errMsg,
	})
}

// expired signs the user out when the API no longer accepts their token.
func (h *Handler) expired(c *gin.Context, err error) bool {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return false
	}
	h.sessions.Clear(c.Writer)
	c.Redirect(http.StatusSeeOther, "/login")
	return true
}

func (h *Handler) apiMessage(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgAPIUnavailable
}

func statusOf(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
