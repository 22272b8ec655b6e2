package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policyscan/internal/common"
	"policyscan/internal/llm"
	"policyscan/internal/parse"
	"policyscan/internal/pdftext"
	"policyscan/internal/pipeline"
	"policyscan/internal/policy"
	"policyscan/internal/schema"
)

type fakeAcquirer struct {
	res pdftext.Result
	err error
}

func (f fakeAcquirer) Extract(context.Context, string, bool) (pdftext.Result, error) {
	return f.res, f.err
}

type fakeGenerator struct {
	out  string
	err  error
	last llm.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	f.last = req
	return f.out, f.err
}

func newProcessor(t *testing.T, acq pipeline.Acquirer, gen llm.Generator) *pipeline.Processor {
	t.Helper()
	val, err := schema.NewValidator(policy.BuildPolicySchema(), nil)
	require.NoError(t, err)
	prs := parse.NewParser(policy.NewFieldPolicy(), nil)
	return pipeline.NewProcessor(acq, gen, prs, val, nil)
}

func longText() pdftext.Result {
	return pdftext.Result{
		Text:   strings.Repeat("POLICY SCHEDULE ", 20),
		Pages:  2,
		Method: "pdf-text",
	}
}

func TestProcessFileSuccess(t *testing.T) {
	gen := &fakeGenerator{out: strings.Join([]string{
		"policyholder.name: Jane Tan",
		"vehicle.registrationMark: AB 1234",
		"premiumAndDiscounts.premiumAmount: HKD 5,500.00",
	}, "\n")}
	p := newProcessor(t, fakeAcquirer{res: longText()}, gen)

	res, err := p.ProcessFile(context.Background(), "policy.pdf")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.Validation.IsValid)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, 2, res.Pages)

	v, _ := res.Data.GetPath("policyholder.name")
	assert.Equal(t, "Jane Tan", v)
	v, _ = res.Data.GetPath("premiumAndDiscounts.premiumAmount")
	assert.Equal(t, 5500.0, v)
	// Unextracted required fields are defaulted, never absent.
	v, _ = res.Data.GetPath("insurerAndPolicyDetails.insurerName")
	assert.Equal(t, "UNKNOWN", v)

	assert.Contains(t, gen.last.User, "POLICY SCHEDULE")
}

func TestProcessFileAcquireErrorIsInvalidInput(t *testing.T) {
	p := newProcessor(t, fakeAcquirer{err: errors.New("document not found")}, &fakeGenerator{})

	_, err := p.ProcessFile(context.Background(), "missing.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestProcessFileTooLittleTextIsNoText(t *testing.T) {
	acq := fakeAcquirer{res: pdftext.Result{Text: "short scan", Method: "pdf-ocr"}}
	p := newProcessor(t, acq, &fakeGenerator{})

	_, err := p.ProcessFile(context.Background(), "scan.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoText)
}

func TestProcessFileFloorCountsCharactersNotBytes(t *testing.T) {
	// 30 Han characters are 90 bytes: a byte count would clear the 50-char
	// floor, a character count must not.
	acq := fakeAcquirer{res: pdftext.Result{Text: strings.Repeat("保", 30), Method: "pdf-ocr"}}
	p := newProcessor(t, acq, &fakeGenerator{})

	_, err := p.ProcessFile(context.Background(), "scan.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoText)
}

func TestProcessFileHanTextAboveFloorProceeds(t *testing.T) {
	acq := fakeAcquirer{res: pdftext.Result{Text: strings.Repeat("保單", 30), Method: "pdf-ocr", Pages: 1}}
	p := newProcessor(t, acq, &fakeGenerator{out: "policyholder.name: 陳大文"})

	res, err := p.ProcessFile(context.Background(), "scan.pdf")
	require.NoError(t, err)

	assert.True(t, res.Success)
	v, _ := res.Data.GetPath("policyholder.name")
	assert.Equal(t, "陳大文", v)
}

func TestProcessFileGenerationFailure(t *testing.T) {
	p := newProcessor(t, fakeAcquirer{res: longText()}, &fakeGenerator{err: errors.New("upstream 500")})

	_, err := p.ProcessFile(context.Background(), "policy.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGeneration)
}

func TestProcessFileEmptyGenerationOutput(t *testing.T) {
	p := newProcessor(t, fakeAcquirer{res: longText()}, &fakeGenerator{out: "   \n  "})

	_, err := p.ProcessFile(context.Background(), "policy.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGeneration)
}

func TestProcessFileValidationFailureIsNonFatal(t *testing.T) {
	// A deep path under an integer leaf turns the year into an object. The
	// default pass sees a present non-null value and leaves it, so the type
	// violation reaches the validator.
	gen := &fakeGenerator{out: "vehicle.yearOfManufacture.note: handwritten"}
	p := newProcessor(t, fakeAcquirer{res: longText()}, gen)

	res, err := p.ProcessFile(context.Background(), "policy.pdf")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.False(t, res.Validation.IsValid)
	assert.Equal(t, "Extracted data has validation errors. Please review.", res.Warnings)
	assert.NotEmpty(t, res.Validation.Errors)
}
