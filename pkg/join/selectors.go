package join

// DOM contract with the conference HTML client. These identifiers are the de
// facto protocol this tool automates against; a client release that renames
// one breaks the corresponding step.
const (
	// Initial audio choice inside the audio modal.
	selMicrophone = `[aria-label="Microphone"]`
	selListenOnly = `[aria-label="Listen only"]`

	// Echo-test confirmation. Absent when the server disables the echo test.
	selEchoTestJoin = `button[data-test="joinEchoTestButton"]`

	// Main-meeting-UI controls. Any one of these appearing means the audio
	// modal is gone; the set spans both current client versions.
	selMainUIReady = `button[data-test="userListToggleButton"],` +
		`button[data-test="joinAudio"],` +
		`[aria-label="Users and messages toggle"]`

	// Legacy client renders the audio dialog inside a react-modal overlay.
	selLegacyOverlay = `.ReactModal__Overlay`

	// Mute toggle; which label shows depends on current mic state.
	selMuteToggle = `button[aria-label="Mute"],button[aria-label="Unmute"]`

	// Toolbar control to (re)join audio. Outside the modal the same
	// data-test marker doubles as the no-audio indicator.
	selToolbarJoinAudio = `button[data-test="joinAudio"]`

	// Webcam negotiation.
	selShareWebcam  = `button[aria-label="Share webcam"]`
	selCameraOption = `select#setCam option`
	selStartSharing = `button[aria-label="Start sharing"]`
)
