package render

import (
	"strings"

	"cv-backend/cv/model"
)

const (
	nbsp      = "\u00a0"
	middleDot = "\u00b7"
	emDash    = "\u2014"
)

var (
	contactSep   = nbsp + nbsp + middleDot + nbsp + nbsp
	bulletPrefix = middleDot + nbsp + nbsp
)

// builder accumulates the story for one document.
type builder struct {
	style  Style
	blocks []block
}

func (b *builder) add(bl ...block) {
	b.blocks = append(b.blocks, bl...)
}

func (b *builder) para(style, markup string) {
	b.add(paragraph{style: style, markup: markup})
}

func (b *builder) space(mm float64) {
	b.add(spacer{height: mm})
}

func (b *builder) sectionHeader(title string) {
	s := b.style
	b.space(s.HeaderSpaceBefore)
	b.add(
		spacedText{style: "section", text: title, charSpace: s.HeaderCharSpace},
		rule{gapBefore: s.RuleGapBefore, gapAfter: s.RuleGapAfter},
	)
}

func (b *builder) name(c model.Contact) {
	b.para("name", esc(c.Name))
	b.space(b.style.NameGap)
}

func (b *builder) contact(c model.Contact) {
	for _, fields := range [][]string{
		{c.Email, c.Phone, c.Website},
		{c.LinkedIn, c.GitHub},
	} {
		var parts []string
		for _, f := range fields {
			if f != "" {
				parts = append(parts, esc(f))
			}
		}
		if len(parts) > 0 {
			b.para("contact", strings.Join(parts, contactSep))
		}
	}
}

func (b *builder) summary(text string) {
	b.sectionHeader("Professional Summary")
	b.para("summary", esc(text))
}

func (b *builder) skills(skills []model.Skill) {
	b.sectionHeader("Skills")
	for _, sk := range skills {
		if sk.Label == "" || len(sk.Items) == 0 {
			continue
		}
		items := make([]string, len(sk.Items))
		for i, it := range sk.Items {
			items[i] = esc(it)
		}
		b.para("body", bold(esc(sk.Label)+":")+" "+strings.Join(items, ", "))
	}
}

func (b *builder) experience(entries []model.Experience) {
	b.sectionHeader("Experience")
	for _, exp := range entries {
		for _, role := range exp.Roles {
			b.add(row{
				leftStyle:  "expTitle",
				rightStyle: "expDate",
				left:       bold(esc(exp.Company) + " " + emDash + " " + esc(role.Title)),
				right:      esc(role.Period),
			})
			for _, line := range roleBullets(role) {
				b.para("bullet", bulletPrefix+esc(line))
			}
			b.space(b.style.RoleGap)
			if role.PageBreakAfter {
				b.add(pageBreak{})
			}
		}
		if exp.PageBreakAfter {
			b.add(pageBreak{})
		}
	}
}

// roleBullets prefers explicit bullets over the sentence split.
func roleBullets(r model.Role) []string {
	var out []string
	for _, bl := range r.Bullets {
		if bl = strings.TrimSpace(bl); bl != "" {
			out = append(out, bl)
		}
	}
	if len(out) > 0 {
		return out
	}
	return splitSentences(r.Description)
}

func (b *builder) projects(projects []model.Project) {
	b.sectionHeader("Projects")
	for _, p := range projects {
		b.para("projName", bold(esc(p.Name)))
		if p.Description != "" {
			b.para("projDesc", esc(p.Description))
		}
		b.space(b.style.EntryGap)
		if p.PageBreakAfter {
			b.add(pageBreak{})
		}
	}
}

func (b *builder) education(entries []model.Education) {
	b.sectionHeader("Education")
	for _, e := range entries {
		heading := e.Institution
		if e.Degree != "" {
			heading = e.Degree
		}
		b.add(row{
			leftStyle:  "eduMain",
			rightStyle: "eduDate",
			left:       bold(esc(heading)),
			right:      esc(e.Period),
		})
		if e.Degree != "" {
			b.para("body", esc(e.Institution))
		}
		if len(e.Focus) > 0 {
			focus := make([]string, len(e.Focus))
			for i, f := range e.Focus {
				focus[i] = esc(f)
			}
			b.para("body", strings.Join(focus, ", "))
		}
		b.space(b.style.EntryGap)
		if e.PageBreakAfter {
			b.add(pageBreak{})
		}
	}
}

// layout builds the whole story in display order.
func layout(doc model.Document, style Style) []block {
	b := &builder{style: style}
	b.name(doc.Contact)
	b.contact(doc.Contact)
	b.summary(doc.Summary)
	b.skills(doc.Skills)
	b.experience(doc.Experience)
	b.projects(doc.Projects)
	b.education(doc.Education)
	return b.blocks
}
