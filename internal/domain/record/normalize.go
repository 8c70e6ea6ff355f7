package record

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// idNamespace seeds UUIDv5 identifiers for records the upstream sent without an id.
var idNamespace = uuid.MustParse("6f1c3b1e-3c55-4a8e-9a43-0d0d6a1f5e21")

// Aliases for attributes whose key differs between the asset, application and timeline endpoints.
var (
	idKeys            = []string{"id", "_id", "assetId", "applicationId", "taskId"}
	nameKeys          = []string{"name", "title", "assetName", "applicantName"}
	typeKeys          = []string{"type", "assetType", "applicationType", "taskType"}
	domainKeys        = []string{"domain", "category", "businessDomain"}
	ownerKeys         = []string{"owner", "dataOwner", "assignee"}
	statusKeys        = []string{"status"}
	certificationKeys = []string{"certification", "certificationStatus"}
	centerKeys        = []string{"center", "serviceCenter", "processingCenter"}
	lastModifiedKeys  = []string{"lastModified", "updatedAt", "modifiedAt"}
	receivedKeys      = []string{"receivedDate", "receivedAt", "submittedDate"}
	processingKeys    = []string{"processingTimeBusinessDays", "processingDays"}
	riskKeys          = []string{"riskScore"}
	qualityKeys       = []string{"qualityScore", "dataQualityScore"}
)

// Normalize converts one decoded JSON object into a Record.
// Wrong-typed attributes are treated as absent, a missing tag list becomes empty,
// and a missing id is replaced by a stable UUIDv5 of kind/name/type/domain.
// The second return value lists the attributes that had to be repaired.
func Normalize(raw map[string]any, kind Kind) (Record, []string) {
	n := normalizer{raw: raw}

	f := Fields{
		Name:           n.str("name", nameKeys),
		Type:           n.str("type", typeKeys),
		Domain:         n.str("domain", domainKeys),
		Owner:          n.str("owner", ownerKeys),
		Status:         n.str("status", statusKeys),
		Certification:  n.str("certification", certificationKeys),
		Center:         n.str("center", centerKeys),
		Tags:           n.tags(),
		LastModified:   n.time("lastModified", lastModifiedKeys),
		ReceivedDate:   n.time("receivedDate", receivedKeys),
		ProcessingDays: n.number("processingDays", processingKeys),
		RiskScore:      n.number("riskScore", riskKeys),
		QualityScore:   n.number("qualityScore", qualityKeys),
	}

	id := n.id()
	if id == "" {
		seed := strings.Join([]string{string(kind), f.Name, f.Type, f.Domain}, "\x00")
		id = uuid.NewSHA1(idNamespace, []byte(seed)).String()
		n.repaired = append(n.repaired, "id")
	}

	return New(id, kind, f), n.repaired
}

// NormalizeAll normalizes a batch, preserving order. Non-object entries are skipped
// and reported as "record[i]".
func NormalizeAll(raws []any, kind Kind) ([]Record, []string) {
	out := make([]Record, 0, len(raws))
	var repaired []string
	for i, item := range raws {
		obj, ok := item.(map[string]any)
		if !ok {
			repaired = append(repaired, "record["+strconv.Itoa(i)+"]")
			continue
		}
		rec, fixes := Normalize(obj, kind)
		for _, f := range fixes {
			repaired = append(repaired, rec.ID()+"."+f)
		}
		out = append(out, rec)
	}
	return out, repaired
}

type normalizer struct {
	raw      map[string]any
	repaired []string
}

func (n *normalizer) lookup(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := n.raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (n *normalizer) str(field string, keys []string) string {
	v, ok := n.lookup(keys)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		n.repaired = append(n.repaired, field)
		return ""
	}
	return strings.TrimSpace(s)
}

func (n *normalizer) id() string {
	v, ok := n.lookup(idKeys)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// whole numbers outside the int64 range keep their float spelling
		if t == math.Trunc(t) && t >= -(1<<63) && t < 1<<63 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func (n *normalizer) tags() []string {
	v, ok := n.raw["tags"]
	if !ok || v == nil {
		return []string{}
	}
	items, ok := v.([]any)
	if !ok {
		n.repaired = append(n.repaired, "tags")
		return []string{}
	}
	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			n.repaired = append(n.repaired, "tags")
			continue
		}
		tags = append(tags, s)
	}
	return tags
}

func (n *normalizer) number(field string, keys []string) *float64 {
	v, ok := n.lookup(keys)
	if !ok {
		return nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			n.repaired = append(n.repaired, field)
			return nil
		}
		f = parsed
	default:
		n.repaired = append(n.repaired, field)
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		n.repaired = append(n.repaired, field)
		return nil
	}
	return &f
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func (n *normalizer) time(field string, keys []string) time.Time {
	v, ok := n.lookup(keys)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC()
			}
		}
	case float64:
		// unix millis
		if t > 0 && !math.IsInf(t, 0) {
			return time.UnixMilli(int64(t)).UTC()
		}
	}
	n.repaired = append(n.repaired, field)
	return time.Time{}
}
