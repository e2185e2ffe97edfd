package admin

import (
	"net/http"

	collectionsmodule "github.com/offerboat/admin/internal/services/admin/module/collections"
	dashboardmodule "github.com/offerboat/admin/internal/services/admin/module/dashboard"
	notificationsmodule "github.com/offerboat/admin/internal/services/admin/module/notifications"
	sessionmodule "github.com/offerboat/admin/internal/services/admin/module/session"
)

type dashboardModuleService struct {
	handler *Handler
}

func newDashboardModuleService(h *Handler) dashboardmodule.Service {
	if h == nil {
		return nil
	}
	return dashboardModuleService{handler: h}
}

func (s dashboardModuleService) HandleRoot(w http.ResponseWriter, r *http.Request) {
	s.handler.handleRoot(w, r)
}

func (s dashboardModuleService) HandleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	s.handler.handleAdminDashboard(w, r)
}

func (s dashboardModuleService) HandleTeamDashboard(w http.ResponseWriter, r *http.Request) {
	s.handler.handleTeamDashboard(w, r)
}

type sessionModuleService struct {
	handler *Handler
}

func newSessionModuleService(h *Handler) sessionmodule.Service {
	if h == nil {
		return nil
	}
	return sessionModuleService{handler: h}
}

func (s sessionModuleService) HandleLogin(w http.ResponseWriter, r *http.Request) {
	s.handler.handleLogin(w, r)
}

func (s sessionModuleService) HandleLogout(w http.ResponseWriter, r *http.Request) {
	s.handler.handleLogout(w, r)
}

func (s sessionModuleService) HandlePushToken(w http.ResponseWriter, r *http.Request) {
	s.handler.handlePushToken(w, r)
}

type notificationsModuleService struct {
	handler *Handler
}

func newNotificationsModuleService(h *Handler) notificationsmodule.Service {
	if h == nil {
		return nil
	}
	return notificationsModuleService{handler: h}
}

func (s notificationsModuleService) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	s.handler.handleNotifications(w, r)
}

func (s notificationsModuleService) HandleNotificationsClear(w http.ResponseWriter, r *http.Request) {
	s.handler.handleNotificationsClear(w, r)
}

func (s notificationsModuleService) HandleNotificationRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	s.handler.handleNotificationRead(w, r, notificationID)
}

type collectionsModuleService struct {
	handler *Handler
}

func newCollectionsModuleService(h *Handler) collectionsmodule.Service {
	if h == nil {
		return nil
	}
	return collectionsModuleService{handler: h}
}

func (s collectionsModuleService) HandleList(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen) {
	s.handler.handleList(w, r, screen)
}

func (s collectionsModuleService) HandleCollectionAction(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen, action string) {
	s.handler.handleCollectionAction(w, r, screen, action)
}

func (s collectionsModuleService) HandleDetail(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen, id string) {
	s.handler.handleDetail(w, r, screen, id)
}

func (s collectionsModuleService) HandleRecordAction(w http.ResponseWriter, r *http.Request, screen collectionsmodule.Screen, id string, action string) {
	s.handler.handleRecordAction(w, r, screen, id, action)
}
