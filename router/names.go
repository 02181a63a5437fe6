package router

// Stage names. Decision labels are the names of the stages they route to.
const (
	StageRouter       = "router"
	StageQuestion     = "question"
	StageAnswer       = "answer"
	StageCode         = "code"
	StageText         = "text"
	StageCodeRouter   = "code_router"
	StageTextRouter   = "text_router"
	StageGenerateCode = "generate_code"
	StageEditCode     = "edit_code"
	StageGenerateText = "generate_text"
	StageEditText     = "edit_text"
	StageSaveCode     = "save_code"
	StageSaveText     = "save_text"
)

// State keys outside the per-stage output keys.
const (
	KeyQuery = "query"
	KeyError = "error"
	KeyNext  = "next"
)

// Artifact names.
const (
	DefaultCodeFile = "output.py"
	TextFile        = "output.txt"
)

// CodeFiles is the closed set of names save_code may write.
var CodeFiles = []string{
	"output.cpp",
	"output.py",
	"output.js",
	"output.java",
	"output.go",
	"output.php",
	"output.rb",
	"output.cs",
	"output.rs",
}
