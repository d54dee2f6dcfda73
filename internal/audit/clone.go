package audit

// Clone returns a deep copy of the document. The engine mutates a clone
// during export and swaps it in only after the encode step succeeds, so
// a failed export can never leave a half-advanced document behind.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Metadata: d.Metadata}

	if d.Findings != nil {
		out.Findings = make([]Finding, len(d.Findings))
		copy(out.Findings, d.Findings)
		for i := range out.Findings {
			if src := d.Findings[i].ReviewerComments; src != nil {
				out.Findings[i].ReviewerComments = make([]ReviewerComment, len(src))
				copy(out.Findings[i].ReviewerComments, src)
			}
		}
	}
	if d.Comments != nil {
		out.Comments = make([]Comment, len(d.Comments))
		copy(out.Comments, d.Comments)
	}
	if d.Evidence != nil {
		out.Evidence = make([]Evidence, len(d.Evidence))
		copy(out.Evidence, d.Evidence)
	}
	if d.Log != nil {
		out.Log = make([]LogEntry, len(d.Log))
		copy(out.Log, d.Log)
		for i := range out.Log {
			if src := d.Log[i].Details; src != nil {
				dst := make(map[string]string, len(src))
				for k, v := range src {
					dst[k] = v
				}
				out.Log[i].Details = dst
			}
		}
	}
	return out
}
