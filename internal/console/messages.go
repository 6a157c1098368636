package console

// Command bytes.
const (
	cmdAlarmState = '1'
	cmdGasState   = '2'
	cmdOverTemp   = '3'
	cmdEnterCode  = '4'
	cmdNewCode    = '5'
	cmdPotLower   = 'p'
	cmdPotUpper   = 'P'
	cmdCelsiusLow = 'c'
	cmdCelsiusUp  = 'C'
	cmdFahrenLow  = 'f'
	cmdFahrenUp   = 'F'
)

const (
	echo       = "*"
	degreeSign = "\xB0" // Latin-1 degree sign
)

const (
	msgAlarmOn        = "The alarm is activated\r\n"
	msgAlarmOff       = "The alarm is not activated\r\n"
	msgGasDetected    = "Gas is being detected\r\n"
	msgGasNotDetected = "Gas is not being detected\r\n"
	msgTempAbove      = "Temperature is above the maximum level\r\n"
	msgTempBelow      = "Temperature is below the maximum level\r\n"

	msgCodeCorrect   = "\r\nThe code is correct\r\n\r\n"
	msgCodeIncorrect = "\r\nThe code is incorrect\r\n\r\n"
	msgCodeBlocked   = "\r\nThe system is blocked, the code was not checked\r\n\r\n"
	msgNewCode       = "\r\nNew code generated\r\n\r\n"
	msgEntryTimeout  = "\r\nCode entry timed out\r\n\r\n"

	fmtPotentiometer = "Potentiometer: %.2f\r\n"
	fmtCelsius       = "Temperature: %.2f " + degreeSign + " C\r\n"
	fmtFahrenheit    = "Temperature: %.2f " + degreeSign + " F\r\n"
)

const codeInstructions = "First enter 'A', then 'B', then 'C', and finally 'D' button\r\n" +
	"In each case type 1 for pressed or 0 for not pressed\r\n" +
	"For example, for 'A' = pressed, 'B' = pressed, 'C' = not pressed, " +
	"'D' = not pressed, enter '1', then '1', then '0', and finally '0'\r\n\r\n"

const (
	promptEnterCode = "Please enter the code sequence.\r\n" + codeInstructions
	promptNewCode   = "Please enter new code sequence\r\n" + codeInstructions
)

const helpText = "Available commands:\r\n" +
	"Press '1' to get the alarm state\r\n" +
	"Press '2' to get the gas detector state\r\n" +
	"Press '3' to get the over temperature detector state\r\n" +
	"Press '4' to enter the code sequence\r\n" +
	"Press '5' to enter a new code\r\n" +
	"Press 'P' or 'p' to get potentiometer reading\r\n" +
	"Press 'f' or 'F' to get lm35 reading in Fahrenheit\r\n" +
	"Press 'c' or 'C' to get lm35 reading in Celsius\r\n\r\n"
