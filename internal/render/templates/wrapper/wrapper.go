package templates

const WrapperTemplate = `% Generated on {{.GeneratedDate}}
% Figure: {{.FigureName}}
% Checksum: {{.Checksum}}
\begin{center}
\begin{figure}[H]
    \centering
    \resizebox{1\linewidth}{!}{\input{ {{.PlotFileName}} }}
{{- if .Caption}}
    \caption{ {{.Caption}} }
{{- end}}
    \label{fig:{{.LabelID}}}
    \end{figure}
\end{center}
`

type WrapperData struct {
	GeneratedDate string
	FigureName    string
	Checksum      string
	PlotFileName  string
	Caption       string
	LabelID       string
}
