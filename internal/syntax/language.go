package syntax

import (
	"path/filepath"
	"strings"

	"codecritic/internal/models"
)

var extLanguages = map[string]models.Language{
	".py":  models.LangPython,
	".go":  models.LangGo,
	".js":  models.LangJavaScript,
	".jsx": models.LangJavaScript,
	".mjs": models.LangJavaScript,
	".ts":  models.LangTypeScript,
	".tsx": models.LangTypeScript,
	".rs":  models.LangRust,
}

// DetectLanguage infers the source language, preferring the file extension
// and falling back to cheap keyword heuristics for extensionless input.
func DetectLanguage(path, content string) models.Language {
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	switch {
	case strings.Contains(content, "def ") && strings.Contains(content, "import "):
		return models.LangPython
	case strings.Contains(content, "fn ") && strings.Contains(content, "let "):
		return models.LangRust
	case strings.Contains(content, "func ") && strings.Contains(content, "package "):
		return models.LangGo
	case strings.Contains(content, "function ") || strings.Contains(content, "const "):
		return models.LangJavaScript
	}
	return models.LangUnknown
}

// NewSourceUnit builds an immutable SourceUnit with its detected language.
func NewSourceUnit(path, content string) models.SourceUnit {
	return models.SourceUnit{
		Path:     path,
		Content:  content,
		Language: DetectLanguage(path, content),
	}
}

// AnalyzableExtensions lists the extensions the engine has grammars for.
func AnalyzableExtensions() []string {
	exts := make([]string, 0, len(extLanguages))
	for ext := range extLanguages {
		exts = append(exts, ext)
	}
	return exts
}
