package analysis

import "unicode"

// TaskName derives the analysis task name for a variant: tool name plus the
// camel-cased variant name (spotbugs + debug -> spotbugsDebug). The derived
// name is the idempotency key for the whole per-variant pipeline.
func TaskName(tool, variantName string) string {
	return tool + upperFirst(variantName)
}

// HTMLTaskName names the optional HTML-rendering task for an analysis task:
// generateSpotbugsDebugHtmlReport.
func HTMLTaskName(taskName string) string {
	return "generate" + upperFirst(taskName) + "HtmlReport"
}

// CollectTaskName names the violation-collection task for an analysis task:
// collectSpotbugsDebugViolations.
func CollectTaskName(taskName string) string {
	return "collect" + upperFirst(taskName) + "Violations"
}

// EvaluateTaskName names the shared fan-in evaluation task for a tool:
// evaluateSpotbugsViolations.
func EvaluateTaskName(tool string) string {
	return "evaluate" + upperFirst(tool) + "Violations"
}

// ReportFileName returns the XML report file name for an analysis task,
// following the <taskName>Report.xml convention.
func ReportFileName(taskName string) string {
	return taskName + "Report.xml"
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
