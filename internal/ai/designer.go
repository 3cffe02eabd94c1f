package ai

import (
	"context"
	"errors"
	"fmt"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/builder"
	"go-guildbuilder/internal/logging"
)

// MaxAttempts bounds the generate, heal, validate, repair loop.
const MaxAttempts = 3

var ErrNoValidBlueprint = errors.New("could not produce a valid blueprint")

// DesignError carries the validation errors of the last attempt.
type DesignError struct {
	Errors []blueprint.ValidationError
}

func (e *DesignError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %s", ErrNoValidBlueprint, MaxAttempts, blueprint.FormatErrors(e.Errors))
}

func (e *DesignError) Unwrap() error { return ErrNoValidBlueprint }

type Designer struct {
	gen  Generator
	opts Options
}

func NewDesigner(gen Generator, opts Options) *Designer {
	return &Designer{gen: gen, opts: opts}
}

type attempt struct {
	bp     *blueprint.Blueprint
	result blueprint.Result
}

// Design asks the generator for a blueprint until one validates. Each
// attempt heals the raw reply and, when it parses but fails the schema,
// sends one repair request with the validation errors. Progress lines go
// to n. Info channels are injected after validation when the brief asks
// for them.
func (d *Designer) Design(ctx context.Context, brief Brief, serverName string, n builder.Notifier) (*blueprint.Blueprint, error) {
	notify(ctx, n, "🧠 Generating blueprint with AI...")

	last := blueprint.Result{}
	var bp *blueprint.Blueprint
	for i := 1; i <= MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 1 {
			notify(ctx, n, fmt.Sprintf("🔁 Attempt %d fixing blueprint...", i))
		}

		raw, err := d.gen.Generate(ctx, generationMessages(brief), d.opts)
		if err != nil {
			logging.Warn("[AI] generation attempt %d failed: %v", i, err)
		}
		obj := blueprint.Heal(raw)
		if obj == nil {
			logging.Info("[AI] JSON parse failed on attempt %d", i)
			notify(ctx, n, "⚠️ AI returned empty or invalid JSON. Retrying...")
			continue
		}

		a := check(raw, obj)
		if a.result.Valid {
			bp = a.bp
			break
		}
		last = a.result

		repairRaw, err := d.gen.Generate(ctx, repairMessages(a.result.Errors, obj), d.opts)
		if err != nil {
			logging.Warn("[AI] repair attempt %d failed: %v", i, err)
		}
		repaired := blueprint.Heal(repairRaw)
		if repaired == nil {
			repaired = map[string]any{}
		}
		a = check(repairRaw, repaired)
		if a.result.Valid {
			bp = a.bp
			break
		}
		last = a.result
	}

	if bp == nil {
		if len(last.Errors) == 0 {
			last.Errors = []blueprint.ValidationError{{Message: "no parseable JSON returned"}}
		}
		return nil, &DesignError{Errors: last.Errors}
	}

	if brief.WantsInfo {
		if added := InjectInfoChannels(bp, brief.Description, serverName, brief.RuleTemplate); len(added) > 0 {
			logging.Info("[AI] injected info channels: %v", added)
		}
	}
	return bp, nil
}

// check validates the healed document and, when valid, decodes it from the
// raw text so category order survives.
func check(raw string, obj map[string]any) attempt {
	res, err := blueprint.ValidateValue(obj)
	if err != nil {
		return attempt{result: blueprint.Result{Errors: []blueprint.ValidationError{{Message: err.Error()}}}}
	}
	if !res.Valid {
		return attempt{result: res}
	}
	bp, ok := blueprint.HealBlueprint(raw)
	if !ok {
		return attempt{result: blueprint.Result{Errors: []blueprint.ValidationError{{Message: "blueprint could not be decoded"}}}}
	}
	return attempt{bp: bp, result: res}
}

func notify(ctx context.Context, n builder.Notifier, text string) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, text); err != nil {
		logging.Debug("[AI] progress note dropped: %v", err)
	}
}
