package logging

// PromptName is the name of the prompt that returns Guide.
const PromptName = "climcp-logging-guide"

// Instructions is included in the server instructions when log forwarding
// is enabled.
const Instructions = `When this server emits log messages (notifications/message), the ` + "`logger`" + ` field indicates the source:
- "stderr": Subprocess stderr (CLI tools run as subprocesses)
- "app": In-process application logs
- Other: Application-defined logger names`

// Guide is the full logging guide returned by the PromptName prompt.
const Guide = `# climcp Logging Guide

When this server emits log messages (notifications/message), use the ` + "`logger`" + ` field to interpret the source:

- **"stderr"**: Output from subprocess stderr (CLI tools run as subprocesses). The ` + "`_meta`" + ` field may include ` + "`tool`" + ` for the command name.
- **"app"**: In-process application logs.
- **Other**: Application-defined logger names.

The ` + "`level`" + ` field uses RFC 5424 syslog severity: debug, info, notice, warning, error, critical, alert, emergency.
The ` + "`data`" + ` field contains the message (string or JSON object).`
