// Package service wraps pkg/redline behind the same thin-service-in-
// front-of-a-library shape the teacher's packaging.go used to wrap
// go-docx: a narrow interface the HTTP handlers depend on, backed by a
// concrete type that does the real work. A fresh *redline.Session is
// created per call rather than held across requests — spec.md §5
// requires no shared mutable state between concurrent calls on the same
// engine instance, and an HTTP server's requests are exactly that.
package service

import (
	"github.com/vortex/ooxml-redline/internal/config"
	"github.com/vortex/ooxml-redline/pkg/redline"
)

// RedlineRequest is one ApplyRedline HTTP request body.
type RedlineRequest struct {
	ParagraphXML     string `json:"paragraphXml"`
	OriginalText     string `json:"originalText"`
	ModifiedText     string `json:"modifiedText"`
	Author           string `json:"author,omitempty"`
	GenerateRedlines *bool  `json:"generateRedlines,omitempty"`
	StripMarkdown    *bool  `json:"stripMarkdown,omitempty"`
}

// RedlineResponse mirrors redline.Result for JSON transport.
type RedlineResponse struct {
	OxmlOutput       string   `json:"oxml"`
	HasChanges       bool     `json:"hasChanges"`
	AcceptedText     string   `json:"acceptedText"`
	IncludeNumbering bool     `json:"includeNumbering"`
	Warnings         []string `json:"warnings,omitempty"`
}

// IngestRequest is one IngestOoxml HTTP request body.
type IngestRequest struct {
	ParagraphXML string `json:"paragraphXml"`
}

// IngestResponse mirrors redline.IngestResult for JSON transport.
type IngestResponse struct {
	AcceptedText string `json:"acceptedText"`
}

// CommentsRequest is one InjectComments HTTP request body.
type CommentsRequest struct {
	DocumentXML string                   `json:"documentXml"`
	Comments    []CommentItem `json:"comments"`
}

type CommentItem struct {
	ParagraphIndex int    `json:"paragraphIndex"`
	Snippet        string `json:"textToFind"`
	Author         string `json:"author"`
	Initials       string `json:"initials,omitempty"`
	Text           string `json:"commentContent"`
	CommentID      int    `json:"commentId"`
}

// CommentsResponse mirrors redline.CommentResult for JSON transport.
type CommentsResponse struct {
	OxmlOutput      string   `json:"oxml"`
	CommentsXML     string   `json:"commentsXml"`
	CommentsApplied int      `json:"commentsApplied"`
	Warnings        []string `json:"warnings,omitempty"`
}

// RedlineService exposes the three engine operations over plain request/
// response structs, insulating the HTTP layer from pkg/redline's Go API
// shape.
type RedlineService interface {
	ApplyRedline(req RedlineRequest) (RedlineResponse, error)
	Ingest(req IngestRequest) (IngestResponse, error)
	InjectComments(req CommentsRequest) (CommentsResponse, error)
}

type redlineService struct {
	defaults config.EngineDefaults
}

// NewRedlineService creates a RedlineService applying defaults whenever
// a request omits the corresponding optional field.
func NewRedlineService(defaults config.EngineDefaults) RedlineService {
	return &redlineService{defaults: defaults}
}

func (s *redlineService) ApplyRedline(req RedlineRequest) (RedlineResponse, error) {
	session := redline.NewSession()
	opts := redline.Options{
		GenerateRedlines: boolOr(req.GenerateRedlines, s.defaults.GenerateRedlines),
		Author:           stringOr(req.Author, s.defaults.Author),
		StripMarkdown:    boolOr(req.StripMarkdown, s.defaults.StripMarkdown),
	}
	result, err := session.ApplyRedline(req.ParagraphXML, req.OriginalText, req.ModifiedText, opts)
	if err != nil {
		return RedlineResponse{}, err
	}
	return RedlineResponse{
		OxmlOutput:       result.ParagraphXML,
		HasChanges:       result.HasChanges,
		AcceptedText:     result.AcceptedText,
		IncludeNumbering: result.IncludeNumbering,
		Warnings:         result.Warnings,
	}, nil
}

func (s *redlineService) Ingest(req IngestRequest) (IngestResponse, error) {
	session := redline.NewSession()
	result, err := session.IngestOoxml(req.ParagraphXML)
	if err != nil {
		return IngestResponse{}, err
	}
	return IngestResponse{AcceptedText: result.AcceptedText}, nil
}

func (s *redlineService) InjectComments(req CommentsRequest) (CommentsResponse, error) {
	session := redline.NewSession()
	requests := make([]redline.CommentRequest, len(req.Comments))
	for i, c := range req.Comments {
		requests[i] = redline.CommentRequest{
			ParagraphIndex: c.ParagraphIndex,
			Snippet:        c.Snippet,
			Author:         c.Author,
			Initials:       c.Initials,
			Text:           c.Text,
			CommentID:      c.CommentID,
		}
	}
	result, err := session.InjectComments(req.DocumentXML, requests, redline.CommentOptions{})
	if err != nil {
		return CommentsResponse{}, err
	}
	return CommentsResponse{
		OxmlOutput:      result.DocumentXML,
		CommentsXML:     result.CommentsXML,
		CommentsApplied: result.CommentsApplied,
		Warnings:        result.Warnings,
	}, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
