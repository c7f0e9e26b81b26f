package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.currentAdmin(r); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	data := s.pageData(r)
	data["Email"] = ""
	data["Error"] = ""
	data["Locked"] = false
	if s.lockout != nil {
		if wait, blocked := s.lockout.Blocked(time.Now()); blocked {
			data["Locked"] = true
			data["Error"] = lockoutMessage(wait)
		}
	}
	s.renderPage(w, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	now := time.Now()

	data := s.pageData(r)
	data["Email"] = email
	data["Locked"] = false

	if s.lockout != nil {
		if wait, blocked := s.lockout.Blocked(now); blocked {
			data["Locked"] = true
			data["Error"] = lockoutMessage(wait)
			s.renderPage(w, http.StatusTooManyRequests, "login.html", data)
			return
		}
	}

	if email == "" || password == "" {
		data["Error"] = "Email and password are required."
		s.renderPage(w, http.StatusBadRequest, "login.html", data)
		return
	}

	if _, err := s.auth.SignIn(ctx, email, password); err != nil {
		s.log().Warn("sign-in failed", "email", email, "error", err)
		data["Error"] = "Invalid email or password."
		if s.lockout != nil {
			if lerr := s.lockout.RegisterFailure(now); lerr != nil {
				s.log().Warn("recording login failure failed", "error", lerr)
			}
			if wait, blocked := s.lockout.Blocked(now); blocked {
				data["Locked"] = true
				data["Error"] = lockoutMessage(wait)
			} else if remaining := s.lockout.Remaining(); remaining > 0 {
				data["Error"] = fmt.Sprintf("Invalid email or password. %d attempts remaining.", remaining)
			}
		}
		s.renderPage(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	if s.lockout != nil {
		if err := s.lockout.Reset(); err != nil {
			s.log().Warn("resetting login attempts failed", "error", err)
		}
	}

	token, err := s.sessions.create(email, now)
	if err != nil {
		s.log().Error("creating browser session failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, token)
	s.log().Info("admin signed in", "email", email)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		s.sessions.revoke(cookie.Value)
	}
	s.clearSessionCookie(w)

	if s.auth != nil {
		if err := s.auth.SignOut(r.Context()); err != nil {
			s.log().Warn("backend sign-out failed", "error", err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func lockoutMessage(wait time.Duration) string {
	minutes := int(wait.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Too many failed attempts. Try again in %d minutes.", minutes)
}
