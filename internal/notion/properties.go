// internal/notion/properties.go
package notion

import (
	"starsync/internal/model"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// Property names of the mirror database schema. The title property is the
// reconciliation join key and must hold the repository name verbatim.
const (
	propName    = "Name"
	propOwner   = "Owner"
	propURL     = "URL"
	propRelease = "Last Release"
	propCommit  = "Last Commit"
)

// toMirrorRecord translates a notionapi.Page object to our internal
// model.MirrorRecord. Missing or mistyped properties read as absent.
func toMirrorRecord(page notionapi.Page) model.MirrorRecord {
	return model.MirrorRecord{
		ID:            page.ID.String(),
		Title:         pageTitle(page.Properties),
		Owner:         pageRichText(page.Properties, propOwner),
		URL:           pageURL(page.Properties),
		StoredRelease: pageDate(page.Properties, propRelease),
		StoredCommit:  pageDate(page.Properties, propCommit),
		Archived:      page.Archived,
	}
}

func pageTitle(props notionapi.Properties) string {
	tp, ok := props[propName].(*notionapi.TitleProperty)
	if !ok {
		return ""
	}
	return plainText(tp.Title)
}

func pageRichText(props notionapi.Properties, key string) string {
	rp, ok := props[key].(*notionapi.RichTextProperty)
	if !ok {
		return ""
	}
	return plainText(rp.RichText)
}

func pageURL(props notionapi.Properties) string {
	up, ok := props[propURL].(*notionapi.URLProperty)
	if !ok {
		return ""
	}
	return up.URL
}

func pageDate(props notionapi.Properties, key string) *model.Date {
	dp, ok := props[key].(*notionapi.DateProperty)
	if !ok || dp.Date == nil || dp.Date.Start == nil {
		return nil
	}

	d := model.DateOf(time.Time(*dp.Date.Start))
	return &d
}

func plainText(rich []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range rich {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}

func dateProperty(d model.Date) notionapi.DateProperty {
	start := notionapi.Date(d.Time())
	return notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &start},
	}
}
