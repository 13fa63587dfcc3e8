package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alnah/docsite"
	"github.com/alnah/docsite/internal/assets"
	"github.com/alnah/docsite/internal/config"
	"github.com/alnah/docsite/internal/site"
	"github.com/alnah/docsite/internal/source"
)

func TestWithHint(t *testing.T) {
	t.Parallel()

	timeoutSet := config.DefaultConfig()
	noTimeout := config.DefaultConfig()
	noTimeout.Remote.Timeout = ""

	tests := []struct {
		name      string
		err       error
		cfg       *config.Config
		wantHint  string
		wantNoHit bool
	}{
		{name: "config not found", err: config.ErrConfigNotFound, wantHint: "docsite init"},
		{name: "style not found", err: fmt.Errorf("x: %w", assets.ErrStyleNotFound), wantHint: "default, plain"},
		{name: "template set not found", err: assets.ErrTemplateSetNotFound, wantHint: "available: default"},
		{name: "fetch without timeout", err: source.ErrFetch, cfg: noTimeout, wantHint: "remote.timeout"},
		{name: "fetch without config", err: source.ErrFetch, wantHint: "remote.timeout"},
		{name: "publish", err: site.ErrPublish, wantHint: "publish.remote"},
		{name: "unresolvable image", err: docsite.ErrUnresolvableImage, wantHint: "absolute URL"},
		{name: "no hint", err: errors.New("boom"), wantNoHit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := withHint(tt.err, tt.cfg)
			if !errors.Is(got, tt.err) {
				t.Errorf("withHint() lost the error chain: %v", got)
			}
			if tt.wantNoHit {
				if strings.Contains(got.Error(), "hint:") {
					t.Errorf("unexpected hint: %v", got)
				}
				return
			}
			if !strings.Contains(got.Error(), "hint:") || !strings.Contains(got.Error(), tt.wantHint) {
				t.Errorf("withHint() = %q, want hint containing %q", got, tt.wantHint)
			}
		})
	}

	t.Run("fetch with timeout omits timeout hint", func(t *testing.T) {
		t.Parallel()

		got := withHint(source.ErrFetch, timeoutSet).Error()
		if strings.Contains(got, "remote.timeout") {
			t.Errorf("withHint() = %q, should not suggest a timeout", got)
		}
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		if withHint(nil, nil) != nil {
			t.Error("withHint(nil) should be nil")
		}
	})
}
