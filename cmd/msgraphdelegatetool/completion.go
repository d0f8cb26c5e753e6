package main

// generateBashCompletion generates a bash completion script for the tool
func generateBashCompletion() string {
	return `# msgraphdelegatetool bash completion script
# Installation:
#   Linux: Copy to /etc/bash_completion.d/msgraphdelegatetool
#   macOS: Copy to /usr/local/etc/bash_completion.d/msgraphdelegatetool
#   Manual: source this file in your ~/.bashrc

_msgraphdelegatetool_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    # All available flags
    opts="-action -config -owner -delegate -timezone -authmode -tenantid -clientid
          -secret -pfx -pfxpass -scopes -credfile -autorefresh
          -id -folder -count -search -unread -to -cc -bcc -subject -body
          -bodytemplate -attach -start -end -location -response -comment -savetosent
          -timeout -proxy -ratelimit -pagesize -output -logformat -loglevel
          -verbose -version -completion -help"

    # Flag-specific completions
    case "${prev}" in
        -action)
            # Suggest valid actions
            COMPREPLY=( $(compgen -W "getinbox readmail markread markunread movemail deletemail sendmail replymail getfolders getevents sendinvite respondevent cancelevent refreshtoken showtoken whoami" -- ${cur}) )
            return 0
            ;;
        -authmode)
            COMPREPLY=( $(compgen -W "delegate app" -- ${cur}) )
            return 0
            ;;
        -response)
            COMPREPLY=( $(compgen -W "accept decline tentative" -- ${cur}) )
            return 0
            ;;
        -folder)
            # Suggest well-known folder names
            COMPREPLY=( $(compgen -W "inbox drafts sentitems deleteditems junkemail archive outbox" -- ${cur}) )
            return 0
            ;;
        -output)
            COMPREPLY=( $(compgen -W "text json" -- ${cur}) )
            return 0
            ;;
        -logformat)
            COMPREPLY=( $(compgen -W "csv json" -- ${cur}) )
            return 0
            ;;
        -pfx|-attach|-bodytemplate|-config|-credfile)
            # File path completion
            COMPREPLY=( $(compgen -f -- ${cur}) )
            return 0
            ;;
        -loglevel)
            # Suggest log levels
            COMPREPLY=( $(compgen -W "DEBUG INFO WARN ERROR" -- ${cur}) )
            return 0
            ;;
        -completion)
            # Suggest shell types
            COMPREPLY=( $(compgen -W "bash powershell" -- ${cur}) )
            return 0
            ;;
        -version|-verbose|-unread|-help)
            # No completion after boolean flags
            return 0
            ;;
        -count|-pagesize|-ratelimit)
            # Numeric values - no completion
            return 0
            ;;
        -owner|-delegate|-timezone|-tenantid|-clientid|-secret|-pfxpass|-scopes|-id|-search|-to|-cc|-bcc|-subject|-body|-start|-end|-location|-comment|-savetosent|-autorefresh|-timeout|-proxy)
            # String values - no completion
            return 0
            ;;
    esac

    # Default: complete with flag names
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
}

# Register the completion function for the tool
complete -F _msgraphdelegatetool_completions msgraphdelegatetool.exe
complete -F _msgraphdelegatetool_completions msgraphdelegatetool
complete -F _msgraphdelegatetool_completions ./msgraphdelegatetool.exe
complete -F _msgraphdelegatetool_completions ./msgraphdelegatetool
`
}

// generatePowerShellCompletion generates a PowerShell completion script for the tool
func generatePowerShellCompletion() string {
	return `# msgraphdelegatetool PowerShell completion script
# Installation:
#   Add to your PowerShell profile: notepad $PROFILE
#   Or run manually: . .\msgraphdelegatetool-completion.ps1

Register-ArgumentCompleter -CommandName msgraphdelegatetool.exe,msgraphdelegatetool,'.\msgraphdelegatetool.exe','.\msgraphdelegatetool' -ScriptBlock {
    param($commandName, $parameterName, $wordToComplete, $commandAst, $fakeBoundParameters)

    # Define valid actions
    $actions = @('getinbox', 'readmail', 'markread', 'markunread', 'movemail', 'deletemail', 'sendmail', 'replymail', 'getfolders', 'getevents', 'sendinvite', 'respondevent', 'cancelevent', 'refreshtoken', 'showtoken', 'whoami')

    # Define log levels
    $logLevels = @('DEBUG', 'INFO', 'WARN', 'ERROR')

    # Define shell types for completion flag
    $shellTypes = @('bash', 'powershell')

    # Meeting responses
    $responses = @('accept', 'decline', 'tentative')

    # All flags that accept values
    $flags = @(
        '-action', '-config', '-owner', '-delegate', '-timezone', '-authmode',
        '-tenantid', '-clientid', '-secret', '-pfx', '-pfxpass', '-scopes',
        '-credfile', '-autorefresh', '-id', '-folder', '-count', '-search',
        '-unread', '-to', '-cc', '-bcc', '-subject', '-body', '-bodytemplate',
        '-attach', '-start', '-end', '-location', '-response', '-comment',
        '-savetosent', '-timeout', '-proxy', '-ratelimit', '-pagesize',
        '-output', '-logformat', '-loglevel', '-verbose', '-version',
        '-completion', '-help'
    )

    # Get the last word from command line
    $lastWord = ''
    if ($commandAst.CommandElements.Count -gt 1) {
        $lastWord = $commandAst.CommandElements[-2].ToString()
    }

    # Provide context-specific completions based on the previous flag
    switch ($lastWord) {
        '-action' {
            $actions | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', "Action: $_")
            }
            return
        }
        '-response' {
            $responses | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', "Response: $_")
            }
            return
        }
        '-loglevel' {
            $logLevels | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', "Log Level: $_")
            }
            return
        }
        '-completion' {
            $shellTypes | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', "Shell: $_")
            }
            return
        }
        '-pfx' {
            # File completion for PFX files
            Get-ChildItem -Path "$wordToComplete*" -File -ErrorAction SilentlyContinue |
                Where-Object { $_.Extension -in @('.pfx', '.p12') -or $wordToComplete -eq '' } |
                ForEach-Object {
                    [System.Management.Automation.CompletionResult]::new(
                        $_.FullName,
                        $_.Name,
                        'ParameterValue',
                        "Certificate: $($_.Name)"
                    )
                }
            return
        }
        '-attach' {
            # File completion for any file type
            Get-ChildItem -Path "$wordToComplete*" -File -ErrorAction SilentlyContinue |
                ForEach-Object {
                    [System.Management.Automation.CompletionResult]::new(
                        $_.FullName,
                        $_.Name,
                        'ParameterValue',
                        "File: $($_.Name)"
                    )
                }
            return
        }
    }

    # Default: complete with flag names
    $flags | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
        $description = switch ($_) {
            '-action' { 'Operation to perform (getinbox, sendmail, getevents, ...)' }
            '-config' { 'Path to JSON configuration file' }
            '-owner' { 'Owner mailbox the tool acts on' }
            '-delegate' { 'Delegate (assistant) identity, informational' }
            '-timezone' { 'IANA timezone for calendar responses' }
            '-authmode' { 'Authentication mode (delegate or app)' }
            '-tenantid' { 'Azure Tenant ID (GUID)' }
            '-clientid' { 'Application (Client) ID (GUID)' }
            '-secret' { 'Client Secret for app authentication' }
            '-pfx' { 'Path to .pfx certificate file' }
            '-pfxpass' { 'Password for .pfx certificate' }
            '-scopes' { 'Comma-separated OAuth2 scopes for token refresh' }
            '-credfile' { 'Path to the stored credential file' }
            '-autorefresh' { 'Refresh an expired stored token automatically' }
            '-id' { 'Message or event ID, a trailing fragment is enough' }
            '-folder' { 'Mail folder name (inbox, sentitems, or display name)' }
            '-count' { 'Number of items to retrieve' }
            '-search' { 'Search phrase for message listing' }
            '-unread' { 'List unread messages only' }
            '-to' { 'Comma-separated TO recipients' }
            '-cc' { 'Comma-separated CC recipients' }
            '-bcc' { 'Comma-separated BCC recipients' }
            '-subject' { 'Mail or invite subject' }
            '-body' { 'Mail body, reply comment' }
            '-bodytemplate' { 'Path to an HTML body template file' }
            '-attach' { 'Comma-separated attachment file paths' }
            '-start' { 'Window or invite start time (RFC3339)' }
            '-end' { 'Window or invite end time (RFC3339)' }
            '-location' { 'Invite location' }
            '-response' { 'Meeting response (accept, decline, tentative)' }
            '-comment' { 'Comment for meeting response or cancellation' }
            '-savetosent' { 'Save sent mail to Sent Items' }
            '-timeout' { 'Timeout for each Graph call' }
            '-proxy' { 'HTTP/HTTPS proxy URL' }
            '-ratelimit' { 'Max requests per second (0 = unlimited)' }
            '-pagesize' { 'Page size for ID resolution listings' }
            '-output' { 'Output format (text or json)' }
            '-logformat' { 'Audit log format (csv or json)' }
            '-loglevel' { 'Log level (DEBUG, INFO, WARN, ERROR)' }
            '-verbose' { 'Enable verbose output' }
            '-version' { 'Show version information' }
            '-completion' { 'Generate shell completion script' }
            '-help' { 'Show help' }
            default { $_ }
        }
        [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterName', $description)
    }
}
`
}
