// Package pipeline owns the question-answering state machine: classify
// the question, dispatch it to the ticker or document branch, then
// converge on answer generation. Every path visits each stage at most
// once; there are no cycles and no retries.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"finagent/internal/domain"
	"finagent/internal/usecase"
)

// stage enumerates the states of the run. Transitions:
// classify → dispatch → (extract → priceLookup) | (retrieve → filter) → generate → done.
// Extraction finding no instrument jumps straight to generate with
// empty evidence.
type stage int

const (
	stageClassify stage = iota
	stageDispatch
	stageExtract
	stagePriceLookup
	stageRetrieve
	stageFilter
	stageGenerate
	stageDone
)

// Pipeline wires the six services into one run per question. All
// dependencies are constructed once at startup and injected here;
// the pipeline itself holds no cross-request mutable state.
type Pipeline struct {
	classifier *usecase.Classifier
	extractor  *usecase.InstrumentExtractor
	price      *usecase.PriceLookup
	retriever  *usecase.Retriever
	grader     *usecase.RelevanceGrader
	generator  *usecase.Generator

	topK         int
	stageTimeout time.Duration
	now          func() time.Time
}

// Options tune a pipeline without widening the constructor.
type Options struct {
	TopK         int           // retrieval depth, default 10
	StageTimeout time.Duration // per-external-call timeout, 0 disables
	Now          func() time.Time
}

func New(
	classifier *usecase.Classifier,
	extractor *usecase.InstrumentExtractor,
	price *usecase.PriceLookup,
	retriever *usecase.Retriever,
	grader *usecase.RelevanceGrader,
	generator *usecase.Generator,
	opts Options,
) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		classifier:   classifier,
		extractor:    extractor,
		price:        price,
		retriever:    retriever,
		grader:       grader,
		generator:    generator,
		topK:         opts.TopK,
		stageTimeout: opts.StageTimeout,
		now:          opts.Now,
	}
}

// Run processes one question to completion or first hard failure.
// Classification, grading and generation failures abort the run;
// evidence edge cases (no ticker, no price data) still produce an
// answer.
func (p *Pipeline) Run(ctx context.Context, question string) (*domain.RunState, error) {
	state := &domain.RunState{
		Question: question,
		Evidence: domain.NoEvidence{},
	}

	var ref *domain.InstrumentRef
	cur := stageClassify

	for cur != stageDone {
		switch cur {
		case stageClassify:
			route, err := p.classify(ctx, question)
			if err != nil {
				return nil, err
			}
			state.Route = route
			cur = stageDispatch

		case stageDispatch:
			log.Printf("pipeline: routed question as %s", state.Route)
			if state.Route == domain.RouteTicker {
				cur = stageExtract
			} else {
				cur = stageRetrieve
			}

		case stageExtract:
			var err error
			ref, err = p.extract(ctx, question)
			if err != nil {
				return nil, err
			}
			if ref == nil {
				log.Printf("pipeline: no instrument found in question")
				cur = stageGenerate
				break
			}
			log.Printf("pipeline: extracted instrument %s (%s)", ref.Symbol, ref.DisplayName)
			cur = stagePriceLookup

		case stagePriceLookup:
			result := p.lookup(ctx, *ref)
			state.Evidence = domain.PriceEvidence{Result: result}
			cur = stageGenerate

		case stageRetrieve:
			docs, err := p.retrieve(ctx, question)
			if err != nil {
				return nil, err
			}
			log.Printf("pipeline: retrieved %d passages", len(docs))
			state.Evidence = domain.DocumentEvidence{Documents: docs}
			cur = stageFilter

		case stageFilter:
			docs := state.Evidence.(domain.DocumentEvidence).Documents
			kept, err := p.filter(ctx, docs, question)
			if err != nil {
				return nil, err
			}
			log.Printf("pipeline: kept %d of %d passages", len(kept), len(docs))
			state.Evidence = domain.DocumentEvidence{Documents: kept}
			cur = stageGenerate

		case stageGenerate:
			answer, err := p.generate(ctx, state)
			if err != nil {
				return nil, err
			}
			state.Generation = answer
			cur = stageDone

		default:
			return nil, fmt.Errorf("pipeline: invalid stage %d", cur)
		}
	}

	return state, nil
}

func (p *Pipeline) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.stageTimeout)
}

func (p *Pipeline) classify(ctx context.Context, question string) (domain.Route, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.classifier.Classify(ctx, question)
}

func (p *Pipeline) extract(ctx context.Context, question string) (*domain.InstrumentRef, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.extractor.Extract(ctx, question, p.now())
}

func (p *Pipeline) lookup(ctx context.Context, ref domain.InstrumentRef) domain.PriceResult {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.price.Lookup(ctx, ref)
}

func (p *Pipeline) retrieve(ctx context.Context, question string) ([]domain.RetrievedDocument, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.retriever.Retrieve(ctx, question, p.topK)
}

func (p *Pipeline) filter(ctx context.Context, docs []domain.RetrievedDocument, question string) ([]domain.RetrievedDocument, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.grader.Filter(ctx, docs, question)
}

func (p *Pipeline) generate(ctx context.Context, state *domain.RunState) (string, error) {
	ctx, cancel := p.stageContext(ctx)
	defer cancel()
	return p.generator.Generate(ctx, state)
}
