package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSession_DefaultState(t *testing.T) {
	s := NewSession("abc")
	require.Equal(t, "abc", s.ID)
	require.Equal(t, PhaseIdle, s.Phase)
	require.Nil(t, s.File)
	require.Empty(t, s.Message)
}

func TestSession_SelectFileClearsResult(t *testing.T) {
	s := NewSession("abc")
	s.File = &SelectedFile{Name: "old.png"}
	s.Complete("Edema: 12.0%")

	file := &SelectedFile{Name: "chest.png", ContentType: "image/png", Data: []byte{1, 2}}
	require.NoError(t, s.SelectFile(file))
	require.Equal(t, PhaseIdle, s.Phase)
	require.Empty(t, s.Message)
	require.Same(t, file, s.File)
	require.Equal(t, 2, s.File.Size())
}

func TestSession_SelectFileWhileSubmitting(t *testing.T) {
	s := NewSession("abc")
	first := &SelectedFile{Name: "a.png"}
	require.NoError(t, s.SelectFile(first))
	require.NoError(t, s.BeginSubmit())

	require.ErrorIs(t, s.SelectFile(&SelectedFile{Name: "b.png"}), ErrSubmitInProgress)
	require.Same(t, first, s.File)
	require.Equal(t, PhaseSubmitting, s.Phase)
}

func TestSession_BeginSubmit(t *testing.T) {
	s := NewSession("abc")
	require.ErrorIs(t, s.BeginSubmit(), ErrNoFileSelected)
	require.Equal(t, PhaseIdle, s.Phase)

	require.NoError(t, s.SelectFile(&SelectedFile{Name: "a.png"}))
	require.NoError(t, s.BeginSubmit())
	require.Equal(t, PhaseSubmitting, s.Phase)

	require.ErrorIs(t, s.BeginSubmit(), ErrSubmitInProgress)
	require.Equal(t, PhaseSubmitting, s.Phase)

	s.Complete("Pneumonia detected (0.82)")
	require.ErrorIs(t, s.BeginSubmit(), ErrResultShown)
	require.Equal(t, PhaseShowingResult, s.Phase)
}

func TestSession_CompleteEmptyMessage(t *testing.T) {
	s := NewSession("abc")
	s.Complete("")
	require.Equal(t, PhaseShowingResult, s.Phase)
	require.Equal(t, FailureMessage, s.Message)
}

func TestSession_Reset(t *testing.T) {
	s := NewSession("abc")
	require.ErrorIs(t, s.Reset(), ErrNothingToReset)

	require.NoError(t, s.SelectFile(&SelectedFile{Name: "a.png"}))
	require.NoError(t, s.BeginSubmit())
	require.ErrorIs(t, s.Reset(), ErrNothingToReset)
	require.Equal(t, PhaseSubmitting, s.Phase)

	s.Complete("Effusion: 7.1%")
	require.NoError(t, s.Reset())
	require.Equal(t, PhaseIdle, s.Phase)
	require.Empty(t, s.Message)
	require.Nil(t, s.File)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := NewSession("abc")
	require.NoError(t, s.SelectFile(&SelectedFile{Name: "a.png"}))

	c := s.Clone()
	c.File.Name = "b.png"
	c.Phase = PhaseShowingResult
	require.Equal(t, "a.png", s.File.Name)
	require.Equal(t, PhaseIdle, s.Phase)
}
