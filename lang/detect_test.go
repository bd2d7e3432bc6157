package lang

import (
	"testing"
)

func TestDetect(t *testing.T) {
	reg := Default()
	d := NewDetector(reg.DefaultID())

	tests := []struct {
		name       string
		sample     string
		wantLang   string
		wantMethod Method
		wantConf   float64
	}{
		{
			name:       "japanese kana and kanji",
			sample:     "第1章 概要\nこれは日本語の文書です。",
			wantLang:   "japanese",
			wantMethod: MethodScript,
			wantConf:   HighConfidence,
		},
		{
			name:       "kanji heavy japanese",
			sample:     "日本国憲法施行令第一条規定説明書類一覧表の概要",
			wantLang:   "japanese",
			wantMethod: MethodScript,
			wantConf:   NarrowedConfidence,
		},
		{
			name:       "simplified chinese",
			sample:     "第一章 概述\n这是一个中文文档。",
			wantLang:   "chinese_simplified",
			wantMethod: MethodPatterns,
			wantConf:   ModerateConfidence,
		},
		{
			name:       "traditional chinese",
			sample:     "第一章 概述\n目錄",
			wantLang:   "chinese_traditional",
			wantMethod: MethodPatterns,
			wantConf:   ModerateConfidence,
		},
		{
			name:       "korean",
			sample:     "제1장 서론\n이 문서는 한국어입니다",
			wantLang:   "korean",
			wantMethod: MethodScript,
			wantConf:   HighConfidence,
		},
		{
			name:       "arabic",
			sample:     "الفصل الأول\nهذا نص عربي",
			wantLang:   "arabic",
			wantMethod: MethodScript,
			wantConf:   HighConfidence,
		},
		{
			name:       "russian",
			sample:     "Глава 1 Введение\nЭто русский текст.",
			wantLang:   "russian",
			wantMethod: MethodScript,
			wantConf:   HighConfidence,
		},
		{
			name:       "english by patterns",
			sample:     "Chapter 1 Introduction\n1.1 Background\nThe quick brown fox.",
			wantLang:   "english",
			wantMethod: MethodPatterns,
			wantConf:   ModerateConfidence,
		},
		{
			name:       "spanish by keywords",
			sample:     "Capítulo 2 Resultados\nIntroducción",
			wantLang:   "spanish",
			wantMethod: MethodPatterns,
			wantConf:   ModerateConfidence,
		},
		{
			name:       "latin without evidence prefers default",
			sample:     "lorem ipsum dolor sit amet",
			wantLang:   "english",
			wantMethod: MethodScript,
			wantConf:   AmbiguousConfidence,
		},
		{
			name:       "empty sample",
			sample:     "",
			wantLang:   "english",
			wantMethod: MethodDefault,
			wantConf:   LowConfidence,
		},
		{
			name:       "digits only",
			sample:     "12 34 56",
			wantLang:   "english",
			wantMethod: MethodDefault,
			wantConf:   LowConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.sample, reg.List())
			if got.Language != tt.wantLang || got.Method != tt.wantMethod || got.Confidence != tt.wantConf {
				t.Errorf("Detect() = %+v, want {%s %v %s}", got, tt.wantLang, tt.wantConf, tt.wantMethod)
			}
		})
	}
}

func TestDetectDeterministic(t *testing.T) {
	reg := Default()
	d := NewDetector("english")
	sample := "Capítulo 1\nIntroduction\n1.1 Scope\nKapitel 2"

	first := d.Detect(sample, reg.List())
	for i := 0; i < 20; i++ {
		if got := d.Detect(sample, reg.List()); got != first {
			t.Fatalf("run %d: Detect() = %+v, want %+v", i, got, first)
		}
	}
}

func TestDetectDefaultNotAmongCandidates(t *testing.T) {
	reg := Default()
	d := NewDetector("russian")

	got := d.Detect("lorem ipsum dolor", reg.List())
	if got.Language != "english" {
		t.Errorf("Detect() = %s, want first Latin profile english", got.Language)
	}
}

func TestDetectWithoutProfiles(t *testing.T) {
	d := NewDetector("english")
	for _, sample := range []string{"", "Chapter 1\nIntroduction", "第1章 概要"} {
		got := d.Detect(sample, nil)
		if got.Language != "english" || got.Method != MethodDefault || got.Confidence != LowConfidence {
			t.Errorf("Detect(%q, nil) = %+v, want the default language", sample, got)
		}
	}
}
