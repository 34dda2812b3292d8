package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"structplace.ai/internal/persistence/indexdb"
	"structplace.ai/internal/persistence/snapshot"
	"structplace.ai/internal/sim/engine"
	"structplace.ai/internal/sim/placement"
)

const mapMaxWidth = 120

func surveyCmd(args []string) error {
	fs := flag.NewFlagSet("survey", flag.ExitOnError)
	c := commonFlags(fs)
	x0 := fs.Int("x0", -32, "first corner chunk x")
	z0 := fs.Int("z0", -32, "first corner chunk z")
	x1 := fs.Int("x1", 31, "second corner chunk x")
	z1 := fs.Int("z1", 31, "second corner chunk z")
	out := fs.String("out", "", "write the survey to this file")
	in := fs.String("read", "", "print a stored survey instead of computing one")
	showMap := fs.Bool("map", false, "draw the rectangle")
	_ = fs.Parse(args)

	var (
		s   engine.Survey
		hdr snapshot.Header
	)
	if *in != "" {
		snap, err := snapshot.ReadSurvey(*in)
		if err != nil {
			return err
		}
		if s, err = snap.Survey(); err != nil {
			return fmt.Errorf("%s: %w", *in, err)
		}
		hdr = snap.Header
	} else {
		e, err := c.engine()
		if err != nil {
			return err
		}
		s, err = e.Survey(e.Seed(), placement.ChunkPos{X: *x0, Z: *z0}, placement.ChunkPos{X: *x1, Z: *z1})
		if err != nil {
			return err
		}
		digest, _ := indexdb.ConfigDigest(e.Config())
		hdr = snapshot.Header{StructureSet: e.Config().StructureSet, ConfigDigest: digest}
		if *out != "" {
			snap := snapshot.FromSurvey(hdr, s)
			if err := snapshot.WriteSurvey(*out, snap); err != nil {
				return err
			}
			hdr = snap.Header
		}
	}

	if *c.asJSON {
		return printJSON(map[string]any{"header": hdr, "survey": s, "counts": s.Counts()})
	}
	fmt.Println(header("survey %s  chunks %d,%d .. %d,%d", hdr.StructureSet, s.Min.X, s.Min.Z, s.Max.X, s.Max.Z))
	pairs := []string{"seed", fmt.Sprint(s.Seed)}
	if hdr.ConfigDigest != "" {
		pairs = append(pairs, "config", hdr.ConfigDigest[:min(12, len(hdr.ConfigDigest))])
	}
	pairs = append(pairs, surveyRows(s)...)
	fmt.Print(kv(pairs...))
	if *out != "" {
		fmt.Println(styleDim.Render("written to " + *out))
	}
	if *showMap {
		if s.Width() > mapMaxWidth {
			fmt.Println(styleDim.Render(fmt.Sprintf("map skipped: wider than %d chunks", mapMaxWidth)))
			return nil
		}
		fmt.Print(surveyMap(s))
	}
	return nil
}

// surveyRows lists structure counts, most frequent first.
func surveyRows(s engine.Survey) []string {
	counts := s.Counts()
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	placements := 0
	for _, v := range s.Cells {
		if v != engine.CellNone {
			placements++
		}
	}
	out := []string{"placement chunks", fmt.Sprint(placements)}
	for _, id := range ids {
		out = append(out, id, fmt.Sprint(counts[id]))
	}
	return out
}

// surveyMap draws one rune per chunk: '.' nothing, 'o' placement chunk
// without a structure, letters for structures in palette order.
func surveyMap(s engine.Survey) string {
	var b strings.Builder
	for z := s.Min.Z; z <= s.Max.Z; z++ {
		for x := s.Min.X; x <= s.Max.X; x++ {
			id, pc, _ := s.At(placement.ChunkPos{X: x, Z: z})
			switch {
			case id != "":
				b.WriteString(styleFound.Render(string(mapGlyph(s, id))))
			case pc:
				b.WriteString(styleDim.Render("o"))
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	for i, id := range s.Structures {
		b.WriteString(fmt.Sprintf("%c = %s\n", glyph(i), id))
	}
	return b.String()
}

func mapGlyph(s engine.Survey, id string) rune {
	for i, known := range s.Structures {
		if known == id {
			return glyph(i)
		}
	}
	return '?'
}

func glyph(i int) rune {
	const glyphs = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if i < len(glyphs) {
		return rune(glyphs[i])
	}
	return '#'
}
