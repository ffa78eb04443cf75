package console

import (
	"net/http"

	"github.com/quantix/quantix-console/internal/domain"
)

const usersPath = "/users"

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search}

	users, err := h.catalog(r).Users.List(r.Context())
	if h.loadFailed(w, r, err, data) {
		return
	}
	data["Users"] = filter(users, func(u domain.User) bool { return matches(search, u.Email) })
	h.render(w, r, "pages/users.html", "Usuarios", data, http.StatusOK)
}

func (h *Handler) showUserForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/user_form.html", "Nuevo usuario", map[string]any{
		"Errors": formErrors{},
		"Form":   userForm{Role: domain.DefaultRole},
	}, http.StatusOK)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseUserForm(r)
	data := map[string]any{"Form": form}

	payload, err := form.payload(true)
	if err == nil {
		_, err = h.catalog(r).Users.Create(r.Context(), payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/user_form.html", "Nuevo usuario", data)
		return
	}
	h.redirectWithFlash(w, r, usersPath, "success", "Usuario creado correctamente.")
}

func (h *Handler) showEditUserForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	user, err := h.catalog(r).Users.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, usersPath)
		return
	}
	h.render(w, r, "pages/user_form.html", "Editar usuario", map[string]any{
		"Errors": formErrors{},
		"ID":     user.ID,
		"Form":   userForm{Email: user.Email, Role: user.Role},
	}, http.StatusOK)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseUserForm(r)
	data := map[string]any{"Form": form, "ID": id}

	payload, err := form.payload(false)
	if err == nil {
		_, err = h.catalog(r).Users.Update(r.Context(), id, payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/user_form.html", "Editar usuario", data)
		return
	}
	h.redirectWithFlash(w, r, usersPath, "success", "Usuario actualizado correctamente.")
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if err := h.catalog(r).Users.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, usersPath)
		return
	}
	h.redirectWithFlash(w, r, usersPath, "success", "Usuario eliminado.")
}
