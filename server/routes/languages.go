// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/forumlang/langcat/i18n"
	"codeberg.org/forumlang/langcat/server/utils"
)

type languageInfo struct {
	ID      string   `json:"id"`
	Tag     string   `json:"tag"`
	Name    string   `json:"name,omitempty"`
	Domains []string `json:"domains"`
}

type languagesResponse struct {
	Default    string         `json:"default"`
	Generation uint64         `json:"generation"`
	Languages  []languageInfo `json:"languages"`
}

type languageResponse struct {
	Language string `json:"language"`
	Tag      string `json:"tag"`
}

// LanguagesPage serves GET /languages.
func LanguagesPage(w http.ResponseWriter, r *http.Request) error {
	resolver, err := resolverFor(r)
	if err != nil {
		return err
	}

	set := resolver.Snapshot()
	resp := languagesResponse{
		Default:    resolver.DefaultLanguage(),
		Generation: set.Generation(),
		Languages:  []languageInfo{},
	}

	for _, id := range set.Languages() {
		tag := i18n.TagFor(id)
		info := languageInfo{
			ID:      id,
			Tag:     tag.String(),
			Domains: set.Domains(id),
		}

		if name := display.Self.Name(tag); name != "" && tag != language.Und {
			info.Name = name
		}
		resp.Languages = append(resp.Languages, info)
	}

	writeJSON(w, http.StatusOK, resp)

	return nil
}

// LanguageGET serves GET /language, reporting the language negotiated for
// the request.
func LanguageGET(w http.ResponseWriter, r *http.Request) error {
	lang := i18n.LanguageFrom(r.Context())

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, languageResponse{Language: lang, Tag: i18n.TagFor(lang).String()})

	return nil
}

// LanguagePOST serves POST /language. The "lang" form value names a loaded
// language id; "auto" or an empty value clears the stored preference.
//
// When a same-origin "return" path is given, the client is redirected to it.
func LanguagePOST(w http.ResponseWriter, r *http.Request) error {
	resolver, err := resolverFor(r)
	if err != nil {
		return err
	}

	lang := utils.GetFormValue(r, i18n.LangParam)

	switch {
	case lang == "" || lang == autoLanguage:
		setLanguageCookie(w, r, "")

		lang = resolver.Match(r.Header.Get("Accept-Language"))
	case slices.Contains(resolver.Languages(), lang):
		setLanguageCookie(w, r, lang)
	default:
		return badRequest("unknown language %q", lang)
	}

	if returnPath := utils.SanitizeReturnPath(utils.GetFormValue(r, "return")); returnPath != "" {
		http.Redirect(w, r, returnPath, http.StatusSeeOther)

		return nil
	}

	writeJSON(w, http.StatusOK, languageResponse{Language: lang, Tag: i18n.TagFor(lang).String()})

	return nil
}
