package bggxml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JuezFenix/bgg-profiler/internal/models"
	"github.com/JuezFenix/bgg-profiler/internal/shared"
	"github.com/antchfx/xmlquery"
)

func parse(data []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedXML, err)
	}
	return doc, nil
}

// ParseCollection extracts the (objectid, name) pair of every <item> in a collection document.
//
// An <errors> document (e.g. an unknown username) is reported as [shared.ErrAPIRequest].
// Items without a numeric objectid are skipped; the ID names a cache file, so nothing else may pass.
func ParseCollection(data []byte) (*models.Collection, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}

	if msg := apiError(doc); msg != "" {
		return nil, fmt.Errorf("%w: %s", shared.ErrAPIRequest, msg)
	}

	collection := models.NewCollection()
	for _, item := range xmlquery.Find(doc, "//item") {
		id := strings.TrimSpace(item.SelectAttr("objectid"))
		if !validID(id) {
			continue
		}

		name := models.Unknown
		if n := xmlquery.FindOne(item, "name"); n != nil {
			name = strings.TrimSpace(n.InnerText())
		}
		collection.Add(models.Game{ID: id, Name: name})
	}

	return collection, nil
}

// validID reports whether id is a non-empty run of ASCII digits.
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// apiError returns the first <errors>/<error>/<message> text of doc, if any.
func apiError(doc *xmlquery.Node) string {
	if n := xmlquery.FindOne(doc, "/errors/error/message"); n != nil {
		return strings.TrimSpace(n.InnerText())
	}
	if n := xmlquery.FindOne(doc, "/errors/error"); n != nil {
		return strings.TrimSpace(n.InnerText())
	}
	return ""
}
