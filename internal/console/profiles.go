package console

import (
	"net/http"
	"strings"

	"github.com/quantix/quantix-console/internal/domain"
)

const profilesPath = "/profiles"

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	data := map[string]any{"Search": search}

	profiles, err := h.catalog(r).Profiles.List(r.Context())
	if h.loadFailed(w, r, err, data) {
		return
	}
	data["OwnProfileID"] = int64(0)
	if own := ownProfile(profiles, currentUser(r)); own != nil {
		data["OwnProfileID"] = own.ID
	}
	data["Profiles"] = filter(profiles, func(p domain.Profile) bool {
		email := ""
		if p.User != nil {
			email = p.User.Email
		}
		return matches(search, p.FullName(), p.Document.String(), email)
	})
	h.render(w, r, "pages/profiles.html", "Perfiles", data, http.StatusOK)
}

// ownProfile finds the profile of the logged-in user using the cached user.
func ownProfile(profiles []domain.Profile, user *domain.User) *domain.Profile {
	if user == nil {
		return nil
	}
	for i := range profiles {
		owner := profiles[i].User
		if owner == nil {
			continue
		}
		if (user.ID != 0 && owner.ID == user.ID) || (user.Email != "" && strings.EqualFold(owner.Email, user.Email)) {
			return &profiles[i]
		}
	}
	return nil
}

func (h *Handler) showProfileForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/profile_form.html", "Nuevo perfil", map[string]any{
		"Errors":   formErrors{},
		"Creating": true,
		"Form":     profileAccountForm{Role: domain.DefaultRole},
	}, http.StatusOK)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseProfileAccountForm(r)
	data := map[string]any{"Form": form, "Creating": true}

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Profiles.Create(r.Context(), payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/profile_form.html", "Nuevo perfil", data)
		return
	}
	h.redirectWithFlash(w, r, profilesPath, "success", "Perfil creado correctamente.")
}

func (h *Handler) showEditProfileForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}
	profile, err := h.catalog(r).Profiles.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, profilesPath)
		return
	}
	form := profileAccountForm{profileForm: profileForm{
		Name:     profile.Name,
		LastName: profile.LastName,
		Document: profile.Document.String(),
		Phone:    profile.Phone,
	}}
	if profile.User != nil {
		form.Email = profile.User.Email
	}
	h.render(w, r, "pages/profile_form.html", "Editar perfil", map[string]any{
		"Errors": formErrors{},
		"ID":     profile.ID,
		"Form":   form,
	}, http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid profile ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseProfileForm(r)
	data := map[string]any{"Form": profileAccountForm{profileForm: form}, "ID": id}

	payload, err := form.payload()
	if err == nil {
		_, err = h.catalog(r).Profiles.Update(r.Context(), id, payload)
	}
	if err != nil {
		h.formFailed(w, r, err, "pages/profile_form.html", "Editar perfil", data)
		return
	}
	h.redirectWithFlash(w, r, profilesPath, "success", "Perfil actualizado correctamente.")
}
