package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fairway/src/lib"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxAudioUploadBytes = 5 << 20

func transcriptionRoutes(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/transcriptions", createTranscriptionHandler)
	return g
}

// createTranscriptionHandler accepts a mono WAV upload ("audio" form field)
// and returns the transcript. The sample rate is read from the WAV header
// rather than trusted from the client.
func createTranscriptionHandler(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("audio")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	if fileHeader.Size > maxAudioUploadBytes {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "audio file exceeds the 5MB limit"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	sampleRate, err := wavSampleRate(audio)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	language := ctx.DefaultPostForm("language", "en-US")
	transcript, err := lib.Transcribe(ctx.Request.Context(), audio, sampleRate, language)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"transcript": transcript, "sample_rate": sampleRate}})
}

// wavSampleRate pulls the sample rate out of a canonical RIFF/WAVE header.
func wavSampleRate(audio []byte) (int32, error) {
	if len(audio) < 44 || !bytes.HasPrefix(audio, []byte("RIFF")) || !bytes.Equal(audio[8:12], []byte("WAVE")) {
		return 0, errWavFormat
	}
	return int32(binary.LittleEndian.Uint32(audio[24:28])), nil
}

var errWavFormat = errors.New("audio must be a WAV file")
